package util

import "errors"

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrFormNotFound           = errors.New("assessment form not found")
	ErrComponentNotFound      = errors.New("assessment component not found")
	ErrStagedResultNotFound   = errors.New("staged student result not found")
	ErrStagedStudentNotFound  = errors.New("staged assessment student not found")
	ErrStudentNotFound        = errors.New("assessment student not found")
	ErrUnknownAssessmentType  = errors.New("unknown assessment type")
	ErrInvalidComponentType   = errors.New("invalid component type code")
	ErrResultAlreadyProcessed = errors.New("staged student result already processed")
	ErrPenNotFound            = errors.New("pen not found in student registry")
	ErrUnknownReportScope     = errors.New("unknown report scope")
	ErrUnsupportedReportScope = errors.New("report scope not supported")
	ErrNoStudentIdentity      = errors.New("staged student has no resolved student identity")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrAssessmentNotFound,
		ErrFormNotFound,
		ErrComponentNotFound,
		ErrStagedResultNotFound,
		ErrStagedStudentNotFound,
		ErrStudentNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
