package service

import (
	"assessment_results_backend/internal/marks"
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/repository"
	"assessment_results_backend/internal/scoring"
	"assessment_results_backend/internal/util"
	"assessment_results_backend/pkg/logger"
	"assessment_results_backend/pkg/monitoring"
	"assessment_results_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StagingService turns batch result rows into staged students.
type StagingService struct {
	DB            *gorm.DB
	Results       *repository.StagedResultRepository
	Staged        *repository.StagedStudentRepository
	Assessments   *repository.AssessmentRepository
	Students      StudentResolver
	Schools       SchoolResolver
	Registrations RegistrationFinder
	Events        EventPublisher
}

func NewStagingService(
	db *gorm.DB,
	results *repository.StagedResultRepository,
	staged *repository.StagedStudentRepository,
	assessments *repository.AssessmentRepository,
	students StudentResolver,
	schools SchoolResolver,
	registrations RegistrationFinder,
	events EventPublisher,
) *StagingService {
	return &StagingService{
		DB:            db,
		Results:       results,
		Staged:        staged,
		Assessments:   assessments,
		Students:      students,
		Schools:       schools,
		Registrations: registrations,
		Events:        events,
	}
}

// LoadResult stores one batch row as LOADED.
func (s *StagingService) LoadResult(ctx context.Context, result *model.StagedStudentResult) error {
	if !result.ComponentType.Valid() {
		return fmt.Errorf("%w: %q", util.ErrInvalidComponentType, result.ComponentType)
	}
	result.ID = ""
	result.Status = model.StagedResultLoaded
	result.FailureReason = ""
	return s.Results.Create(ctx, result)
}

// identity is the outcome of PEN resolution for one batch row.
type identity struct {
	status    model.StagedStatus
	student   *StudentRecord
	mergedPen string
}

// StageResult decodes one LOADED batch row and creates or updates the staged
// student for it. The staged write and the COMPLETED mark commit together.
func (s *StagingService) StageResult(ctx context.Context, resultID string) (*model.StagedAssessmentStudent, error) {
	ctx, span := tracing.Tracer.Start(ctx, "StagingService.StageResult")
	defer span.End()
	span.SetAttributes(attribute.String("staged_result.id", resultID))

	result, err := s.Results.FindByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result.Status != model.StagedResultLoaded {
		return nil, fmt.Errorf("%w: %s is %s", util.ErrResultAlreadyProcessed, resultID, result.Status)
	}
	if !result.ComponentType.Valid() {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidComponentType, result.ComponentType)
	}

	form, err := s.Assessments.FindFormWithComponents(ctx, result.AssessmentFormID)
	if err != nil {
		return nil, err
	}
	if form.AssessmentID != result.AssessmentID {
		return nil, fmt.Errorf("%w: form %s does not belong to assessment %s", util.ErrFormNotFound, form.ID, result.AssessmentID)
	}

	components, err := decodeComponents(result, form)
	if err != nil {
		return nil, err
	}

	id, err := s.resolveIdentity(ctx, result.Pen)
	if err != nil {
		return nil, err
	}

	var (
		registration *model.AssessmentStudent
		school       *SchoolOfRecord
	)
	if id.student != nil {
		registration, err = s.Registrations.FindByAssessmentAndStudent(ctx, result.AssessmentID, id.student.ID)
		if err != nil && !errors.Is(err, util.ErrStudentNotFound) {
			return nil, err
		}
		school, err = s.Schools.CurrentSchoolOfRecord(ctx, id.student.ID)
		if err != nil && !errors.Is(err, util.ErrPenNotFound) {
			return nil, err
		}
	}

	pen := result.Pen
	if id.student != nil && id.student.Pen != "" {
		pen = id.student.Pen
	}

	var staged *model.StagedAssessmentStudent
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Results.WithTx(tx).CompleteLoaded(ctx, result.ID); err != nil {
			return err
		}

		stagedRepo := s.Staged.WithTx(tx)
		existing, err := stagedRepo.FindByAssessmentAndPen(ctx, result.AssessmentID, pen)
		if err != nil && !errors.Is(err, util.ErrStagedStudentNotFound) {
			return err
		}

		if existing == nil {
			staged = newStagedStudent(result, id, pen, registration)
		} else {
			staged = existing
		}
		applyResult(staged, result, id, registration, school)
		staged.Components = mergeComponents(staged.Components, components, form)
		applyTotals(staged, form)

		if existing == nil {
			if err := stagedRepo.Create(ctx, staged); err != nil {
				return err
			}
		} else if err := stagedRepo.Update(ctx, staged, components, formComponentIDs(form)); err != nil {
			return err
		}

		staged, err = stagedRepo.FindByID(ctx, staged.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	monitoring.StagedResults.WithLabelValues(string(staged.StagedStatus)).Inc()
	logger.Log.Info("staged student result",
		zap.String("stagedResultId", result.ID),
		zap.String("stagedStudentId", staged.ID),
		zap.String("assessmentId", staged.AssessmentID),
		zap.String("stagedStatus", string(staged.StagedStatus)))
	s.publish(ctx, Event{
		Type:         EventStudentStaged,
		AssessmentID: staged.AssessmentID,
		StudentID:    deref(staged.StudentID),
		Pen:          staged.Pen,
		RecordID:     staged.ID,
		Status:       string(staged.StagedStatus),
	})
	return staged, nil
}

// ProcessLoadedResults stages up to limit LOADED rows. A failing row is
// marked ERROR and the rest of the batch continues. Rows another worker
// finished first are skipped.
func (s *StagingService) ProcessLoadedResults(ctx context.Context, limit int) (processed, failed int, err error) {
	ids, err := s.Results.FindLoadedIDs(ctx, limit)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return processed, failed, ctx.Err()
		}
		_, stageErr := s.StageResult(ctx, id)
		if errors.Is(stageErr, util.ErrResultAlreadyProcessed) {
			logger.Log.Debug("staged result already processed, skipping", zap.String("stagedResultId", id))
			continue
		}
		if stageErr != nil {
			failed++
			monitoring.StagedResults.WithLabelValues("error").Inc()
			logger.Log.Error("failed to stage result",
				zap.String("stagedResultId", id),
				zap.Error(stageErr))
			if markErr := s.Results.FailLoaded(ctx, id, stageErr.Error()); markErr != nil {
				logger.Log.Error("failed to mark staged result as error",
					zap.String("stagedResultId", id),
					zap.Error(markErr))
			}
			continue
		}
		processed++
	}
	return processed, failed, nil
}

func (s *StagingService) resolveIdentity(ctx context.Context, pen string) (identity, error) {
	rec, err := s.Students.ResolveStudentByPEN(ctx, pen)
	if errors.Is(err, util.ErrPenNotFound) {
		return identity{status: model.StagedStatusNoPenFound}, nil
	}
	if err != nil {
		return identity{}, err
	}
	if !rec.Merged() {
		return identity{status: model.StagedStatusPenMatched, student: rec}, nil
	}

	target, err := s.Students.ResolveMergeTarget(ctx, rec.ID)
	if err != nil {
		return identity{}, fmt.Errorf("resolve merge target of %s: %w", rec.ID, err)
	}
	return identity{status: model.StagedStatusMerged, student: target, mergedPen: pen}, nil
}

func (s *StagingService) publish(ctx context.Context, event Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		logger.Log.Warn("failed to publish event",
			zap.String("eventType", event.Type),
			zap.String("recordId", event.RecordID),
			zap.Error(err))
	}
}

func newStagedStudent(result *model.StagedStudentResult, id identity, pen string, registration *model.AssessmentStudent) *model.StagedAssessmentStudent {
	staged := &model.StagedAssessmentStudent{}
	if registration != nil {
		staged.StudentResult = registration.StudentResult
	}
	staged.AssessmentID = result.AssessmentID
	staged.Pen = pen
	if id.student != nil {
		studentID := id.student.ID
		staged.StudentID = &studentID
		staged.GivenName = id.student.LegalFirstName
		staged.Surname = id.student.LegalLastName
	}
	return staged
}

// applyResult copies the batch row onto the staged student. Identity fields
// of an existing staged student are kept.
func applyResult(staged *model.StagedAssessmentStudent, result *model.StagedStudentResult, id identity, registration *model.AssessmentStudent, school *SchoolOfRecord) {
	formID := result.AssessmentFormID
	staged.AssessmentFormID = &formID
	staged.ProficiencyScore = result.ProficiencyScore
	staged.ProvincialSpecialCaseCode = result.ProvincialSpecialCaseCode
	staged.IrtScore = result.IrtScore
	staged.MarkingSession = result.MarkingSession
	staged.AdaptedAssessmentCode = result.AdaptedAssessmentCode
	staged.StagedStatus = id.status
	staged.MergedPen = id.mergedPen
	staged.IsPreRegistered = registration != nil
	resultID := result.ID
	staged.StagedStudentResultID = &resultID
	staged.UpdateUser = util.SystemUser

	if school != nil {
		if school.SchoolID != "" {
			schoolID := school.SchoolID
			staged.SchoolAtWriteSchoolID = &schoolID
			if staged.SchoolOfRecordSchoolID == nil {
				staged.SchoolOfRecordSchoolID = &schoolID
			}
		}
		if school.Grade != "" {
			staged.GradeAtRegistration = school.Grade
		}
	}
}

// decodeComponents builds the staged components carried by one batch row.
func decodeComponents(result *model.StagedStudentResult, form *model.AssessmentForm) ([]model.StagedAssessmentStudentComponent, error) {
	var out []model.StagedAssessmentStudentComponent
	add := func(typ model.ComponentTypeCode, oral bool, markString string) error {
		fc := findComponent(form, typ, oral)
		if fc == nil {
			return fmt.Errorf("%w: form %s has no %s component (oral=%t)", util.ErrComponentNotFound, form.ID, typ, oral)
		}
		var decoded marks.Result
		if typ == model.ComponentTypeMC {
			decoded = marks.DecodeMC(markString, fc.Questions, result.ChoicePath)
		} else {
			decoded = marks.DecodeOE(markString, fc.Questions, fc.Choices, result.ChoicePath)
		}
		out = append(out, stagedComponent(fc.ID, result.ChoicePath, decoded))
		return nil
	}

	var err error
	switch result.ComponentType {
	case model.LegacyMultipleChoice:
		err = add(model.ComponentTypeMC, false, result.McMarks)
	case model.LegacyOpenEnded:
		err = add(model.ComponentTypeOE, false, result.OeMarks)
	case model.LegacyOral:
		err = add(model.ComponentTypeOE, true, result.OeMarks)
	case model.LegacyBoth:
		if err = add(model.ComponentTypeMC, false, result.McMarks); err == nil {
			err = add(model.ComponentTypeOE, false, result.OeMarks)
		}
	default:
		err = fmt.Errorf("%w: %q", util.ErrInvalidComponentType, result.ComponentType)
	}
	return out, err
}

func findComponent(form *model.AssessmentForm, typ model.ComponentTypeCode, oral bool) *model.AssessmentComponent {
	for i := range form.Components {
		c := &form.Components[i]
		if c.ComponentTypeCode == typ && c.IsOral() == oral {
			return c
		}
	}
	return nil
}

func stagedComponent(componentID, choicePath string, decoded marks.Result) model.StagedAssessmentStudentComponent {
	c := model.StagedAssessmentStudentComponent{
		AssessmentComponentID: componentID,
		ChoicePath:            choicePath,
	}
	for _, a := range decoded.Answers {
		c.Answers = append(c.Answers, model.StagedAssessmentStudentAnswer{
			AssessmentQuestionID: a.AssessmentQuestionID,
			Score:                a.Score,
		})
	}
	for _, ch := range decoded.Choices {
		choice := model.StagedAssessmentStudentChoice{ChosenQuestionNumber: ch.ChosenQuestionNumber}
		if ch.AssessmentChoiceID != "" {
			choiceID := ch.AssessmentChoiceID
			choice.AssessmentChoiceID = &choiceID
		}
		c.Choices = append(c.Choices, choice)
	}
	return c
}

// mergeComponents replaces existing components of the same assessment
// component with the incoming ones. Existing components that are not on form
// are dropped; the rest are kept.
func mergeComponents(existing, incoming []model.StagedAssessmentStudentComponent, form *model.AssessmentForm) []model.StagedAssessmentStudentComponent {
	replaced := make(map[string]bool, len(incoming))
	for _, c := range incoming {
		replaced[c.AssessmentComponentID] = true
	}
	onForm := make(map[string]bool, len(form.Components))
	for _, id := range formComponentIDs(form) {
		onForm[id] = true
	}
	out := make([]model.StagedAssessmentStudentComponent, 0, len(existing)+len(incoming))
	for _, c := range existing {
		if !replaced[c.AssessmentComponentID] && onForm[c.AssessmentComponentID] {
			out = append(out, c)
		}
	}
	return append(out, incoming...)
}

func formComponentIDs(form *model.AssessmentForm) []string {
	ids := make([]string, 0, len(form.Components))
	for _, c := range form.Components {
		ids = append(ids, c.ID)
	}
	return ids
}

// applyTotals stores achieved MC, OE (written and oral) and raw totals.
func applyTotals(staged *model.StagedAssessmentStudent, form *model.AssessmentForm) {
	student, mc, oe := scoringInput(form, stagedComponentAnswers(staged.Components))
	r := scoring.Calculate(student, oe, mc)
	staged.McTotal = r.StudentMC
	staged.OeTotal = r.StudentOE
	staged.RawScore = r.Achieved()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
