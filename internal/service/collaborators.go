package service

import (
	"assessment_results_backend/internal/model"
	"context"
)

const (
	StudentStatusActive = "A"
	StudentStatusMerged = "M"
)

// StudentRecord is the registry view of one student.
type StudentRecord struct {
	ID             string `json:"studentID"`
	Pen            string `json:"pen"`
	LegalFirstName string `json:"legalFirstName"`
	LegalLastName  string `json:"legalLastName"`
	StatusCode     string `json:"statusCode"`
}

func (r *StudentRecord) Merged() bool {
	return r.StatusCode == StudentStatusMerged
}

// SchoolOfRecord is the student's current enrolment.
type SchoolOfRecord struct {
	SchoolID string `json:"schoolOfRecordId"`
	Grade    string `json:"studentGrade"`
}

// StudentResolver resolves PENs against the student registry.
type StudentResolver interface {
	// ResolveStudentByPEN returns util.ErrPenNotFound when the PEN is unknown.
	ResolveStudentByPEN(ctx context.Context, pen string) (*StudentRecord, error)
	// ResolveMergeTarget returns the true student a merged student forwards to.
	ResolveMergeTarget(ctx context.Context, studentID string) (*StudentRecord, error)
}

type SchoolResolver interface {
	CurrentSchoolOfRecord(ctx context.Context, studentID string) (*SchoolOfRecord, error)
}

// RegistrationFinder looks up an existing main record. It returns
// util.ErrStudentNotFound when the student is not registered.
type RegistrationFinder interface {
	FindByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (*model.AssessmentStudent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
