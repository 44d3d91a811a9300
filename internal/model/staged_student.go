package model

import "github.com/shopspring/decimal"

// StagedAssessmentStudent is an in-flight result awaiting transfer to
// AssessmentStudent.
type StagedAssessmentStudent struct {
	UUIDBase
	StudentResult
	StagedStatus          StagedStatus                       `gorm:"size:20;index;not null" json:"stagedStatus"`
	IsPreRegistered       bool                               `json:"isPreRegistered"`
	MergedPen             string                             `gorm:"size:10" json:"mergedPen"`
	StagedStudentResultID *string                            `gorm:"type:varchar(36)" json:"stagedStudentResultId"`
	UpdateUser            string                             `gorm:"size:100" json:"updateUser"`
	Components            []StagedAssessmentStudentComponent `gorm:"foreignKey:StagedAssessmentStudentID;constraint:OnDelete:CASCADE" json:"components,omitempty"`
}

func (StagedAssessmentStudent) TableName() string {
	return "staged_assessment_students"
}

type StagedAssessmentStudentComponent struct {
	UUIDBase
	StagedAssessmentStudentID string                          `gorm:"index;type:varchar(36)" json:"stagedAssessmentStudentId"`
	AssessmentComponentID     string                          `gorm:"type:varchar(36)" json:"assessmentComponentId"`
	ChoicePath                string                          `gorm:"size:1" json:"choicePath"`
	Answers                   []StagedAssessmentStudentAnswer `gorm:"foreignKey:StagedAssessmentStudentComponentID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Choices                   []StagedAssessmentStudentChoice `gorm:"foreignKey:StagedAssessmentStudentComponentID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (StagedAssessmentStudentComponent) TableName() string {
	return "staged_assessment_student_components"
}

type StagedAssessmentStudentAnswer struct {
	UUIDBase
	StagedAssessmentStudentComponentID string          `gorm:"index;type:varchar(36)" json:"stagedAssessmentStudentComponentId"`
	AssessmentQuestionID               string          `gorm:"type:varchar(36)" json:"assessmentQuestionId"`
	Score                              decimal.Decimal `gorm:"type:decimal(12,4)" json:"score"`
}

func (StagedAssessmentStudentAnswer) TableName() string {
	return "staged_assessment_student_answers"
}

type StagedAssessmentStudentChoice struct {
	UUIDBase
	StagedAssessmentStudentComponentID string  `gorm:"index;type:varchar(36)" json:"stagedAssessmentStudentComponentId"`
	AssessmentChoiceID                 *string `gorm:"type:varchar(36)" json:"assessmentChoiceId"`
	ChosenQuestionNumber               int     `json:"chosenQuestionNumber"`
}

func (StagedAssessmentStudentChoice) TableName() string {
	return "staged_assessment_student_choices"
}

// StagedStudentResult is one row of a batch marking-results load.
type StagedStudentResult struct {
	UUIDBase
	AssessmentID              string              `gorm:"index;type:varchar(36);not null" json:"assessmentId" binding:"required"`
	AssessmentFormID          string              `gorm:"type:varchar(36);not null" json:"assessmentFormId" binding:"required"`
	Pen                       string              `gorm:"size:10;not null" json:"pen" binding:"required"`
	ComponentType             LegacyComponentType `gorm:"size:20;not null" json:"componentType" binding:"required"`
	McMarks                   string              `gorm:"type:text" json:"mcMarks"`
	OeMarks                   string              `gorm:"type:text" json:"oeMarks"`
	ChoicePath                string              `gorm:"size:1" json:"choicePath"`
	ProficiencyScore          *int                `json:"proficiencyScore"`
	ProvincialSpecialCaseCode string              `gorm:"size:1" json:"provincialSpecialCaseCode"`
	IrtScore                  string              `gorm:"size:7" json:"irtScore"`
	MarkingSession            string              `gorm:"size:10" json:"markingSession"`
	AdaptedAssessmentCode     string              `gorm:"size:10" json:"adaptedAssessmentCode"`
	Status                    StagedResultStatus  `gorm:"size:20;index;not null" json:"status"`
	FailureReason             string              `gorm:"type:text" json:"failureReason"`
}

func (StagedStudentResult) TableName() string {
	return "staged_student_results"
}
