package service

import (
	"assessment_results_backend/internal/config"
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/repository"
	"assessment_results_backend/internal/util"
	"assessment_results_backend/pkg/database"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRegistry struct {
	students     map[string]*StudentRecord
	mergeTargets map[string]*StudentRecord
	schools      map[string]*SchoolOfRecord
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		students:     map[string]*StudentRecord{},
		mergeTargets: map[string]*StudentRecord{},
		schools:      map[string]*SchoolOfRecord{},
	}
}

func (f *fakeRegistry) ResolveStudentByPEN(_ context.Context, pen string) (*StudentRecord, error) {
	rec, ok := f.students[pen]
	if !ok {
		return nil, util.ErrPenNotFound
	}
	return rec, nil
}

func (f *fakeRegistry) ResolveMergeTarget(_ context.Context, studentID string) (*StudentRecord, error) {
	rec, ok := f.mergeTargets[studentID]
	if !ok {
		return nil, util.ErrPenNotFound
	}
	return rec, nil
}

func (f *fakeRegistry) CurrentSchoolOfRecord(_ context.Context, studentID string) (*SchoolOfRecord, error) {
	school, ok := f.schools[studentID]
	if !ok {
		return nil, util.ErrPenNotFound
	}
	return school, nil
}

func (f *fakeRegistry) addActive(pen, studentID string) {
	f.students[pen] = &StudentRecord{ID: studentID, Pen: pen, LegalFirstName: "Given", LegalLastName: "Surname", StatusCode: StudentStatusActive}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *fakePublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	db         *gorm.DB
	registry   *fakeRegistry
	events     *fakePublisher
	staging    *StagingService
	transfer   *TransferService
	scores     *ScoreService
	staged     *repository.StagedStudentRepository
	students   *repository.StudentRepository
	assessment *model.Assessment
	form       *model.AssessmentForm
}

func question(qn, item, master int, value int64, claim, cognitive string) model.AssessmentQuestion {
	return model.AssessmentQuestion{
		QuestionNumber:       qn,
		ItemNumber:           item,
		MasterQuestionNumber: master,
		ClaimCode:            claim,
		CognitiveLevelCode:   cognitive,
		QuestionValue:        decimal.NewFromInt(value),
		ScaleFactor:          100,
	}
}

// newFixture seeds an NME10 assessment whose form has an MC component with
// two 1-point questions, an OE component with two 4-point questions and an
// oral component with one 2-point question.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver:   database.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	assessments := repository.NewAssessmentRepository(db)
	a := &model.Assessment{
		AssessmentTypeCode: "NME10",
		Forms: []model.AssessmentForm{{
			FormCode: "A",
			Components: []model.AssessmentComponent{
				{
					ComponentTypeCode:    model.ComponentTypeMC,
					ComponentSubTypeCode: model.ComponentSubTypeNone,
					Questions: []model.AssessmentQuestion{
						question(1, 1, 1, 1, "P", "7"),
						question(2, 1, 2, 1, "R", "8"),
					},
				},
				{
					ComponentTypeCode:    model.ComponentTypeOE,
					ComponentSubTypeCode: model.ComponentSubTypeNone,
					Questions: []model.AssessmentQuestion{
						question(1, 1, 1, 4, "", ""),
						question(2, 1, 2, 4, "", ""),
					},
				},
				{
					ComponentTypeCode:    model.ComponentTypeOE,
					ComponentSubTypeCode: model.ComponentSubTypeOral,
					Questions: []model.AssessmentQuestion{
						question(1, 1, 1, 2, "", ""),
					},
				},
			},
		}},
	}
	if err := assessments.CreateAssessment(context.Background(), a); err != nil {
		t.Fatalf("seed assessment: %v", err)
	}

	f := &fixture{
		db:         db,
		registry:   newFakeRegistry(),
		events:     &fakePublisher{},
		staged:     repository.NewStagedStudentRepository(db),
		students:   repository.NewStudentRepository(db),
		assessment: a,
		form:       &a.Forms[0],
	}
	results := repository.NewStagedResultRepository(db)
	f.staging = NewStagingService(db, results, f.staged, assessments, f.registry, f.registry, f.students, f.events)
	f.transfer = NewTransferService(db, f.staged, f.students, f.events)
	f.scores = NewScoreService(assessments, f.staged, f.students)
	return f
}

func (f *fixture) load(t *testing.T, pen string, typ model.LegacyComponentType, mc, oe string) string {
	t.Helper()
	r := &model.StagedStudentResult{
		AssessmentID:     f.assessment.ID,
		AssessmentFormID: f.form.ID,
		Pen:              pen,
		ComponentType:    typ,
		McMarks:          mc,
		OeMarks:          oe,
		MarkingSession:   "202401",
	}
	if err := f.staging.LoadResult(context.Background(), r); err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	return r.ID
}

func (f *fixture) stage(t *testing.T, pen string, typ model.LegacyComponentType, mc, oe string) *model.StagedAssessmentStudent {
	t.Helper()
	staged, err := f.staging.StageResult(context.Background(), f.load(t, pen, typ, mc, oe))
	if err != nil {
		t.Fatalf("StageResult: %v", err)
	}
	return staged
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", m, err)
	}
	return n
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
