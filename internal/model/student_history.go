package model

// AssessmentStudentHistory is an append-only snapshot of an AssessmentStudent,
// written on every save.
type AssessmentStudentHistory struct {
	UUIDBase
	AssessmentStudentID string `gorm:"index;type:varchar(36);not null" json:"assessmentStudentId"`
	StudentResult
	StudentStatusCode StudentStatusCode `gorm:"size:20" json:"studentStatusCode"`
	UpdateUser        string            `gorm:"size:100" json:"updateUser"`
}

func (AssessmentStudentHistory) TableName() string {
	return "assessment_student_histories"
}

func NewAssessmentStudentHistory(s *AssessmentStudent) *AssessmentStudentHistory {
	return &AssessmentStudentHistory{
		AssessmentStudentID: s.ID,
		StudentResult:       s.StudentResult,
		StudentStatusCode:   s.StudentStatusCode,
		UpdateUser:          s.UpdateUser,
	}
}
