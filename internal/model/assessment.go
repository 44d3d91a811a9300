package model

import "github.com/shopspring/decimal"

type AssessmentType struct {
	Code        string `gorm:"primaryKey;size:10" json:"code"`
	Label       string `gorm:"size:100" json:"label"`
	DisplayName string `gorm:"size:255" json:"displayName"`
}

func (AssessmentType) TableName() string {
	return "assessment_types"
}

type Assessment struct {
	UUIDBase
	SessionID          string           `gorm:"index;type:varchar(36)" json:"sessionId"`
	AssessmentTypeCode string           `gorm:"size:10;not null" json:"assessmentTypeCode"`
	Forms              []AssessmentForm `gorm:"foreignKey:AssessmentID" json:"forms,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

type AssessmentForm struct {
	UUIDBase
	AssessmentID string                `gorm:"index;type:varchar(36)" json:"assessmentId"`
	FormCode     string                `gorm:"size:10" json:"formCode"`
	Components   []AssessmentComponent `gorm:"foreignKey:AssessmentFormID" json:"components,omitempty"`
}

func (AssessmentForm) TableName() string {
	return "assessment_forms"
}

type AssessmentComponent struct {
	UUIDBase
	AssessmentFormID     string               `gorm:"index;type:varchar(36)" json:"assessmentFormId"`
	ComponentTypeCode    ComponentTypeCode    `gorm:"size:20;not null" json:"componentTypeCode"`
	ComponentSubTypeCode ComponentSubTypeCode `gorm:"size:20;default:'NONE'" json:"componentSubTypeCode"`
	QuestionCount        int                  `json:"questionCount"`
	NumOmits             int                  `json:"numOmits"`
	Questions            []AssessmentQuestion `gorm:"foreignKey:AssessmentComponentID" json:"questions,omitempty"`
	Choices              []AssessmentChoice   `gorm:"foreignKey:AssessmentComponentID" json:"choices,omitempty"`
}

func (AssessmentComponent) TableName() string {
	return "assessment_components"
}

func (c *AssessmentComponent) IsOral() bool {
	return c.ComponentSubTypeCode == ComponentSubTypeOral
}

// AssessmentQuestion is immutable reference data for one item of a form.
type AssessmentQuestion struct {
	UUIDBase
	AssessmentComponentID string          `gorm:"index;type:varchar(36)" json:"assessmentComponentId"`
	QuestionNumber        int             `json:"questionNumber"`
	ItemNumber            int             `json:"itemNumber"`
	MasterQuestionNumber  int             `json:"masterQuestionNumber"`
	TaskCode              string          `gorm:"size:10" json:"taskCode"`
	ClaimCode             string          `gorm:"size:10" json:"claimCode"`
	ConceptCode           string          `gorm:"size:10" json:"conceptCode"`
	CognitiveLevelCode    string          `gorm:"size:10" json:"cognitiveLevelCode"`
	AssessmentSection     string          `gorm:"size:50" json:"assessmentSection"`
	QuestionValue         decimal.Decimal `gorm:"type:decimal(12,4)" json:"questionValue"`
	ScaleFactor           int             `json:"scaleFactor"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// AssessmentChoice is an OE choice point: the stream slot at MasterQuestionNumber
// carries the question number the student picked from the inclusive range
// FirstQuestionNumber..LastQuestionNumber.
type AssessmentChoice struct {
	UUIDBase
	AssessmentComponentID string `gorm:"index;type:varchar(36)" json:"assessmentComponentId"`
	MasterQuestionNumber  int    `json:"masterQuestionNumber"`
	FirstQuestionNumber   int    `json:"firstQuestionNumber"`
	LastQuestionNumber    int    `json:"lastQuestionNumber"`
}

func (AssessmentChoice) TableName() string {
	return "assessment_choices"
}

func (c *AssessmentChoice) Covers(questionNumber int) bool {
	return questionNumber >= c.FirstQuestionNumber && questionNumber <= c.LastQuestionNumber
}
