package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StudentResult holds the promotable attributes shared by staged, main and
// history rows.
type StudentResult struct {
	AssessmentID              string          `gorm:"index;type:varchar(36);not null" json:"assessmentId"`
	AssessmentFormID          *string         `gorm:"type:varchar(36)" json:"assessmentFormId"`
	StudentID                 *string         `gorm:"index;type:varchar(36)" json:"studentId"`
	Pen                       string          `gorm:"size:10;index" json:"pen"`
	GivenName                 string          `gorm:"size:255" json:"givenName"`
	Surname                   string          `gorm:"size:255" json:"surname"`
	SchoolAtWriteSchoolID     *string         `gorm:"type:varchar(36)" json:"schoolAtWriteSchoolId"`
	SchoolOfRecordSchoolID    *string         `gorm:"type:varchar(36)" json:"schoolOfRecordSchoolId"`
	GradeAtRegistration       string          `gorm:"size:3" json:"gradeAtRegistration"`
	ProficiencyScore          *int            `json:"proficiencyScore"`
	ProvincialSpecialCaseCode string          `gorm:"size:1" json:"provincialSpecialCaseCode"`
	NumberOfAttempts          int             `json:"numberOfAttempts"`
	MarkingSession            string          `gorm:"size:10" json:"markingSession"`
	RawScore                  decimal.Decimal `gorm:"type:decimal(12,4)" json:"rawScore"`
	McTotal                   decimal.Decimal `gorm:"type:decimal(12,4)" json:"mcTotal"`
	OeTotal                   decimal.Decimal `gorm:"type:decimal(12,4)" json:"oeTotal"`
	IrtScore                  string          `gorm:"size:7" json:"irtScore"`
	AdaptedAssessmentCode     string          `gorm:"size:10" json:"adaptedAssessmentCode"`
}

// AssessmentStudent is the authoritative result of one student on one assessment.
type AssessmentStudent struct {
	UUIDBase
	StudentResult
	StudentStatusCode StudentStatusCode            `gorm:"size:20;not null" json:"studentStatusCode"`
	UpdateUser        string                       `gorm:"size:100" json:"updateUser"`
	Components        []AssessmentStudentComponent `gorm:"foreignKey:AssessmentStudentID;constraint:OnDelete:CASCADE" json:"components,omitempty"`
}

func (AssessmentStudent) TableName() string {
	return "assessment_students"
}

// AfterSave appends one history snapshot per save.
func (s *AssessmentStudent) AfterSave(tx *gorm.DB) error {
	return tx.Create(NewAssessmentStudentHistory(s)).Error
}

type AssessmentStudentComponent struct {
	UUIDBase
	AssessmentStudentID   string                    `gorm:"index;type:varchar(36)" json:"assessmentStudentId"`
	AssessmentComponentID string                    `gorm:"type:varchar(36)" json:"assessmentComponentId"`
	ChoicePath            string                    `gorm:"size:1" json:"choicePath"`
	Answers               []AssessmentStudentAnswer `gorm:"foreignKey:AssessmentStudentComponentID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Choices               []AssessmentStudentChoice `gorm:"foreignKey:AssessmentStudentComponentID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (AssessmentStudentComponent) TableName() string {
	return "assessment_student_components"
}

type AssessmentStudentAnswer struct {
	UUIDBase
	AssessmentStudentComponentID string          `gorm:"index;type:varchar(36)" json:"assessmentStudentComponentId"`
	AssessmentQuestionID         string          `gorm:"type:varchar(36)" json:"assessmentQuestionId"`
	Score                        decimal.Decimal `gorm:"type:decimal(12,4)" json:"score"`
}

func (AssessmentStudentAnswer) TableName() string {
	return "assessment_student_answers"
}

type AssessmentStudentChoice struct {
	UUIDBase
	AssessmentStudentComponentID string  `gorm:"index;type:varchar(36)" json:"assessmentStudentComponentId"`
	AssessmentChoiceID           *string `gorm:"type:varchar(36)" json:"assessmentChoiceId"`
	ChosenQuestionNumber         int     `json:"chosenQuestionNumber"`
}

func (AssessmentStudentChoice) TableName() string {
	return "assessment_student_choices"
}
