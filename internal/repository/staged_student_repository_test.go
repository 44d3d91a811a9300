package repository

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStagedStudentCreateAndFind(t *testing.T) {
	repo := NewStagedStudentRepository(newTestDB(t))
	ctx := context.Background()

	s := stagedStudent("a1", "123456789", model.StagedStatusPenMatched, 2)
	mustCreateStaged(t, repo, s)

	got, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(got.Components))
	}
	for _, c := range got.Components {
		if len(c.Answers) != 2 {
			t.Fatalf("answers = %d, want 2", len(c.Answers))
		}
	}

	byPen, err := repo.FindByAssessmentAndPen(ctx, "a1", "123456789")
	if err != nil || byPen.ID != s.ID {
		t.Fatalf("FindByAssessmentAndPen = %v, %v", byPen, err)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, util.ErrStagedStudentNotFound) {
		t.Fatalf("missing id error = %v", err)
	}
}

func TestStagedStudentUpdateReplacesMatchingComponent(t *testing.T) {
	db := newTestDB(t)
	repo := NewStagedStudentRepository(db)
	ctx := context.Background()

	s := stagedStudent("a1", "1", model.StagedStatusPenMatched, 2)
	mustCreateStaged(t, repo, s)

	replacement := []model.StagedAssessmentStudentComponent{{
		AssessmentComponentID: "component-a",
		Answers: []model.StagedAssessmentStudentAnswer{
			{AssessmentQuestionID: "q9", Score: decimal.NewFromInt(4)},
		},
	}}
	s.GivenName = "Updated"
	if err := repo.Update(ctx, s, replacement, []string{"component-a", "component-b"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.GivenName != "Updated" {
		t.Fatalf("given name = %q", got.GivenName)
	}
	if len(got.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(got.Components))
	}
	for _, c := range got.Components {
		if c.AssessmentComponentID == "component-a" && (len(c.Answers) != 1 || c.Answers[0].AssessmentQuestionID != "q9") {
			t.Fatalf("component-a not replaced: %+v", c.Answers)
		}
	}

	var orphans int64
	db.Model(&model.StagedAssessmentStudentAnswer{}).Where("assessment_question_id = ?", "q1").Count(&orphans)
	if orphans != 1 {
		t.Fatalf("answers for q1 = %d, want 1 (component-b only)", orphans)
	}
}

func TestStagedStudentUpdateDropsComponentsOfPreviousForm(t *testing.T) {
	db := newTestDB(t)
	repo := NewStagedStudentRepository(db)
	ctx := context.Background()

	s := stagedStudent("a1", "1", model.StagedStatusPenMatched, 2)
	mustCreateStaged(t, repo, s)

	replacement := []model.StagedAssessmentStudentComponent{{
		AssessmentComponentID: "form-b-mc",
		Answers: []model.StagedAssessmentStudentAnswer{
			{AssessmentQuestionID: "qb1", Score: decimal.NewFromInt(1)},
		},
	}}
	if err := repo.Update(ctx, s, replacement, []string{"form-b-mc", "form-b-oe"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Components) != 1 || got.Components[0].AssessmentComponentID != "form-b-mc" {
		t.Fatalf("components = %+v, want only form-b-mc", got.Components)
	}

	var answers int64
	db.Model(&model.StagedAssessmentStudentAnswer{}).Count(&answers)
	if answers != 1 {
		t.Fatalf("answers = %d, want 1", answers)
	}
}

func TestStagedStudentDeleteRemovesSubtree(t *testing.T) {
	db := newTestDB(t)
	repo := NewStagedStudentRepository(db)
	ctx := context.Background()

	s := stagedStudent("a1", "1", model.StagedStatusTransfer, 1)
	mustCreateStaged(t, repo, s)

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); !errors.Is(err, util.ErrStagedStudentNotFound) {
		t.Fatalf("second Delete error = %v", err)
	}

	for _, m := range []interface{}{
		&model.StagedAssessmentStudentComponent{},
		&model.StagedAssessmentStudentAnswer{},
	} {
		var n int64
		db.Model(m).Count(&n)
		if n != 0 {
			t.Fatalf("%T rows left: %d", m, n)
		}
	}
}

func TestMarkReadyForTransfer(t *testing.T) {
	repo := NewStagedStudentRepository(newTestDB(t))
	ctx := context.Background()

	for pen, status := range map[string]model.StagedStatus{
		"1": model.StagedStatusPenMatched,
		"2": model.StagedStatusMerged,
		"3": model.StagedStatusNoPenFound,
		"4": model.StagedStatusTransferred,
	} {
		mustCreateStaged(t, repo, stagedStudent("a1", pen, status, 0))
	}

	n, err := repo.MarkReadyForTransfer(ctx, util.SystemUser)
	if err != nil {
		t.Fatalf("MarkReadyForTransfer: %v", err)
	}
	if n != 2 {
		t.Fatalf("updated = %d, want 2", n)
	}
	if c, _ := repo.CountByStatus(ctx, model.StagedStatusNoPenFound); c != 1 {
		t.Fatalf("NOPENFOUND rows = %d, want 1", c)
	}
	if c, _ := repo.CountByStatus(ctx, model.StagedStatusTransfer); c != 2 {
		t.Fatalf("TRANSFER rows = %d, want 2", c)
	}
}

func TestFindBatchOfTransferIDsOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewStagedStudentRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, pen := range []string{"3", "1", "2"} {
		s := stagedStudent("a1", pen, model.StagedStatusTransfer, 0)
		mustCreateStaged(t, repo, s)
		db.Model(&model.StagedAssessmentStudent{}).Where("id = ?", s.ID).
			UpdateColumn("updated_at", base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, s.ID)
	}
	mustCreateStaged(t, repo, stagedStudent("a1", "9", model.StagedStatusPenMatched, 0))

	got, err := repo.FindBatchOfTransferIDs(ctx, 2)
	if err != nil {
		t.Fatalf("FindBatchOfTransferIDs: %v", err)
	}
	if len(got) != 2 || got[0] != ids[0] || got[1] != ids[1] {
		t.Fatalf("batch = %v, want %v", got, ids[:2])
	}

	empty, err := repo.FindBatchOfTransferIDs(ctx, 0)
	if err != nil {
		t.Fatalf("FindBatchOfTransferIDs(0): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("limit 0 returned %v", empty)
	}
}

func TestClaimIsExclusive(t *testing.T) {
	repo := NewStagedStudentRepository(newTestDB(t))
	ctx := context.Background()

	s := stagedStudent("a1", "1", model.StagedStatusTransfer, 0)
	mustCreateStaged(t, repo, s)

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(ctx, s.ID)
			if err != nil {
				t.Errorf("Claim: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("winning claims = %d, want 1", wins)
	}
}

func TestReleaseStaleClaims(t *testing.T) {
	db := newTestDB(t)
	repo := NewStagedStudentRepository(db)
	ctx := context.Background()

	stale := stagedStudent("a1", "1", model.StagedStatusTransferred, 0)
	fresh := stagedStudent("a1", "2", model.StagedStatusTransferred, 0)
	mustCreateStaged(t, repo, stale)
	mustCreateStaged(t, repo, fresh)
	db.Model(&model.StagedAssessmentStudent{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-2*time.Hour))

	n, err := repo.ReleaseStaleClaims(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ReleaseStaleClaims: %v", err)
	}
	if n != 1 {
		t.Fatalf("released = %d, want 1", n)
	}
	got, _ := repo.FindByID(ctx, stale.ID)
	if got.StagedStatus != model.StagedStatusTransfer {
		t.Fatalf("stale status = %s", got.StagedStatus)
	}
}
