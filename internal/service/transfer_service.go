package service

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/repository"
	"assessment_results_backend/internal/util"
	"assessment_results_backend/pkg/logger"
	"assessment_results_backend/pkg/monitoring"
	"assessment_results_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransferService promotes staged students into the main tables.
type TransferService struct {
	DB       *gorm.DB
	Staged   *repository.StagedStudentRepository
	Students *repository.StudentRepository
	Events   EventPublisher
}

func NewTransferService(db *gorm.DB, staged *repository.StagedStudentRepository, students *repository.StudentRepository, events EventPublisher) *TransferService {
	return &TransferService{DB: db, Staged: staged, Students: students, Events: events}
}

// MarkStagedStudentsReadyForTransfer flips every PENMATCHED and MERGED row to
// TRANSFER in one statement.
func (s *TransferService) MarkStagedStudentsReadyForTransfer(ctx context.Context) (int64, error) {
	n, err := s.Staged.MarkReadyForTransfer(ctx, util.SystemUser)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("marked staged students ready for transfer", zap.Int64("count", n))
	return n, nil
}

func (s *TransferService) FindBatchOfTransferStudentIDs(ctx context.Context, limit int) ([]string, error) {
	return s.Staged.FindBatchOfTransferIDs(ctx, limit)
}

// ClaimForTransfer reports whether this caller won the TRANSFER to TRANSFERED
// update for id.
func (s *TransferService) ClaimForTransfer(ctx context.Context, id string) (bool, error) {
	return s.Staged.Claim(ctx, id)
}

// ReleaseStaleClaims returns claims older than olderThan to TRANSFER so a
// crashed worker's items are retried.
func (s *TransferService) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.Staged.ReleaseStaleClaims(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Warn("released stale transfer claims", zap.Int64("count", n))
	}
	return n, nil
}

// TransferStagedStudentToMainTables promotes one staged student. The main
// save, its history row and the staged delete commit in one transaction.
func (s *TransferService) TransferStagedStudentToMainTables(ctx context.Context, stagedID string) (*model.AssessmentStudent, error) {
	ctx, span := tracing.Tracer.Start(ctx, "TransferService.TransferStagedStudentToMainTables")
	defer span.End()
	span.SetAttributes(attribute.String("staged_student.id", stagedID))

	start := time.Now()
	var main *model.AssessmentStudent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stagedRepo := s.Staged.WithTx(tx)
		studentRepo := s.Students.WithTx(tx)

		staged, err := stagedRepo.FindByID(ctx, stagedID)
		if err != nil {
			return err
		}
		if staged.StudentID == nil {
			return fmt.Errorf("%w: %s", util.ErrNoStudentIdentity, stagedID)
		}

		existing, err := studentRepo.FindByAssessmentAndStudent(ctx, staged.AssessmentID, *staged.StudentID)
		switch {
		case errors.Is(err, util.ErrStudentNotFound):
			main = &model.AssessmentStudent{
				StudentResult:     staged.StudentResult,
				StudentStatusCode: model.StudentStatusActive,
				UpdateUser:        util.SystemUser,
				Components:        copyComponents(staged.Components),
			}
			if err := studentRepo.Create(ctx, main); err != nil {
				return fmt.Errorf("create main record: %w", err)
			}
		case err != nil:
			return err
		default:
			main = existing
			copyPromotable(main, staged)
			main.UpdateUser = util.SystemUser
			main.Components = copyComponents(staged.Components)
			if err := studentRepo.ReplaceComponents(ctx, main); err != nil {
				return fmt.Errorf("update main record: %w", err)
			}
		}

		return stagedRepo.Delete(ctx, staged.ID)
	})
	monitoring.TransferDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		monitoring.Transfers.WithLabelValues("error").Inc()
		return nil, err
	}

	monitoring.Transfers.WithLabelValues("success").Inc()
	logger.Log.Info("transferred staged student",
		zap.String("stagedStudentId", stagedID),
		zap.String("assessmentStudentId", main.ID),
		zap.String("assessmentId", main.AssessmentID))
	if s.Events != nil {
		event := Event{
			Type:         EventStudentTransferred,
			AssessmentID: main.AssessmentID,
			StudentID:    deref(main.StudentID),
			Pen:          main.Pen,
			RecordID:     main.ID,
			Status:       string(main.StudentStatusCode),
		}
		if err := s.Events.Publish(ctx, event); err != nil {
			logger.Log.Warn("failed to publish event",
				zap.String("eventType", event.Type),
				zap.String("recordId", event.RecordID),
				zap.Error(err))
		}
	}
	return main, nil
}

// copyPromotable overwrites the main record's result fields with the staged
// ones. Identity and status stay with the main record.
func copyPromotable(main *model.AssessmentStudent, staged *model.StagedAssessmentStudent) {
	src := staged.StudentResult
	dst := &main.StudentResult

	dst.AssessmentFormID = src.AssessmentFormID
	dst.SchoolAtWriteSchoolID = src.SchoolAtWriteSchoolID
	if src.SchoolOfRecordSchoolID != nil {
		dst.SchoolOfRecordSchoolID = src.SchoolOfRecordSchoolID
	}
	if src.GradeAtRegistration != "" {
		dst.GradeAtRegistration = src.GradeAtRegistration
	}
	if src.GivenName != "" {
		dst.GivenName = src.GivenName
	}
	if src.Surname != "" {
		dst.Surname = src.Surname
	}
	dst.ProficiencyScore = src.ProficiencyScore
	dst.ProvincialSpecialCaseCode = src.ProvincialSpecialCaseCode
	dst.MarkingSession = src.MarkingSession
	dst.RawScore = src.RawScore
	dst.McTotal = src.McTotal
	dst.OeTotal = src.OeTotal
	dst.IrtScore = src.IrtScore
	dst.AdaptedAssessmentCode = src.AdaptedAssessmentCode
}

// copyComponents deep-copies a staged subtree with fresh identities.
func copyComponents(staged []model.StagedAssessmentStudentComponent) []model.AssessmentStudentComponent {
	out := make([]model.AssessmentStudentComponent, 0, len(staged))
	for _, sc := range staged {
		c := model.AssessmentStudentComponent{
			AssessmentComponentID: sc.AssessmentComponentID,
			ChoicePath:            sc.ChoicePath,
		}
		c.ID = model.GenerateUUID()
		for _, sa := range sc.Answers {
			a := model.AssessmentStudentAnswer{
				AssessmentStudentComponentID: c.ID,
				AssessmentQuestionID:         sa.AssessmentQuestionID,
				Score:                        sa.Score,
			}
			a.ID = model.GenerateUUID()
			c.Answers = append(c.Answers, a)
		}
		for _, sch := range sc.Choices {
			ch := model.AssessmentStudentChoice{
				AssessmentStudentComponentID: c.ID,
				ChosenQuestionNumber:         sch.ChosenQuestionNumber,
			}
			if sch.AssessmentChoiceID != nil {
				id := *sch.AssessmentChoiceID
				ch.AssessmentChoiceID = &id
			}
			ch.ID = model.GenerateUUID()
			c.Choices = append(c.Choices, ch)
		}
		out = append(out, c)
	}
	return out
}
