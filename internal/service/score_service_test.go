package service

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/scoring"
	"assessment_results_backend/internal/util"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestScoreStagedStudent(t *testing.T) {
	f := newFixture(t)
	f.registry.addActive("1", "s1")
	staged := f.stage(t, "1", model.LegacyBoth, "00010000", "00030002")

	score, err := f.scores.ScoreStagedStudent(context.Background(), staged.ID)
	if err != nil {
		t.Fatalf("ScoreStagedStudent: %v", err)
	}
	assertDecimal(t, "possibleMc", score.Result.PossibleMC, "2")
	assertDecimal(t, "studentMc", score.Result.StudentMC, "1")
	assertDecimal(t, "possibleOe", score.Result.PossibleOE, "8")
	assertDecimal(t, "studentOe", score.Result.StudentOE, "5")
	if score.Percent != "60.00" {
		t.Fatalf("percent = %s, want 60.00", score.Percent)
	}

	planning := score.Sections[scoring.SectionPlanning]
	assertDecimal(t, "planning achieved", planning.Achieved, "1")
	assertDecimal(t, "planning possible", planning.Possible, "1")
	reasoning := score.Sections[scoring.SectionReasoning]
	assertDecimal(t, "reasoning achieved", reasoning.Achieved, "0")
	openEnded := score.Sections[scoring.SectionOpenEnded]
	assertDecimal(t, "openEnded possible", openEnded.Possible, "8")
}

func TestScoreStudentAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.addActive("1", "s1")
	staged := f.stage(t, "1", model.LegacyMultipleChoice, "00010001", "")
	main, err := f.transfer.TransferStagedStudentToMainTables(ctx, staged.ID)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	score, err := f.scores.ScoreStudent(ctx, main.ID)
	if err != nil {
		t.Fatalf("ScoreStudent: %v", err)
	}
	if score.Percent != "100.00" {
		t.Fatalf("percent = %s, want 100.00", score.Percent)
	}

	history, err := f.scores.History(ctx, main.ID)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %v, %v", history, err)
	}
	if _, err := f.scores.ScoreStudent(ctx, "missing"); !errors.Is(err, util.ErrStudentNotFound) {
		t.Fatalf("missing error = %v", err)
	}
}

func TestSectionReportRoundingByScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, pen := range []string{"1", "2", "3"} {
		f.registry.addActive(pen, "s"+pen)
		f.registry.schools["s"+pen] = &SchoolOfRecord{SchoolID: "school-1", Grade: "10"}
	}
	f.stage(t, "1", model.LegacyBoth, "00010000", "00030002")
	f.stage(t, "2", model.LegacyBoth, "00010001", "00040004")
	f.stage(t, "3", model.LegacyBoth, "00000000", "00010000")

	staging, err := f.scores.SectionReport(ctx, f.assessment.ID, scoring.ScopeStaging, "")
	if err != nil {
		t.Fatalf("staging report: %v", err)
	}
	if staging.CohortSize != 3 {
		t.Fatalf("staging cohort = %d", staging.CohortSize)
	}
	assertDecimal(t, "staging average percent", staging.AveragePercent, "56.66")

	if _, err := f.transfer.MarkStagedStudentsReadyForTransfer(ctx); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	ids, _ := f.transfer.FindBatchOfTransferStudentIDs(ctx, 10)
	for _, id := range ids {
		if _, err := f.transfer.TransferStagedStudentToMainTables(ctx, id); err != nil {
			t.Fatalf("transfer %s: %v", id, err)
		}
	}

	province, err := f.scores.SectionReport(ctx, f.assessment.ID, scoring.ScopeProvince, "")
	if err != nil {
		t.Fatalf("province report: %v", err)
	}
	school, err := f.scores.SectionReport(ctx, f.assessment.ID, scoring.ScopeSchool, "school-1")
	if err != nil {
		t.Fatalf("school report: %v", err)
	}

	assertDecimal(t, "province average percent", province.AveragePercent, "56.66")
	assertDecimal(t, "school average percent", school.AveragePercent, "56.67")
	assertDecimal(t, "province total", sectionAchieved(t, province, scoring.SectionTotal), "5.66")
	assertDecimal(t, "school total", sectionAchieved(t, school, scoring.SectionTotal), "5.67")
	if province.Rounding != "ROUND_DOWN" || school.Rounding != "ROUND_HALF_UP" {
		t.Fatalf("rounding = %s / %s", province.Rounding, school.Rounding)
	}

	other, err := f.scores.SectionReport(ctx, f.assessment.ID, scoring.ScopeSchool, "school-2")
	if err != nil {
		t.Fatalf("other school report: %v", err)
	}
	if other.CohortSize != 0 {
		t.Fatalf("other school cohort = %d", other.CohortSize)
	}

	if _, err := f.scores.SectionReport(ctx, f.assessment.ID, "GALAXY", ""); !errors.Is(err, util.ErrUnknownReportScope) {
		t.Fatalf("unknown scope error = %v", err)
	}
	if _, err := f.scores.SectionReport(ctx, f.assessment.ID, scoring.ScopeDistrict, "school-1"); !errors.Is(err, util.ErrUnsupportedReportScope) {
		t.Fatalf("district scope error = %v", err)
	}
}

func sectionAchieved(t *testing.T, r *SectionReport, name string) decimal.Decimal {
	t.Helper()
	for _, s := range r.Sections {
		if s.Section == name {
			return s.Achieved
		}
	}
	t.Fatalf("section %s missing", name)
	return decimal.Zero
}
