package repository

import (
	"assessment_results_backend/internal/config"
	"assessment_results_backend/internal/model"
	"assessment_results_backend/pkg/database"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func stagedStudent(assessmentID, pen string, status model.StagedStatus, components int) *model.StagedAssessmentStudent {
	studentID := "student-" + pen
	s := &model.StagedAssessmentStudent{
		StudentResult: model.StudentResult{
			AssessmentID: assessmentID,
			StudentID:    &studentID,
			Pen:          pen,
		},
		StagedStatus: status,
	}
	for i := 0; i < components; i++ {
		s.Components = append(s.Components, model.StagedAssessmentStudentComponent{
			AssessmentComponentID: "component-" + string(rune('a'+i)),
			Answers: []model.StagedAssessmentStudentAnswer{
				{AssessmentQuestionID: "q1", Score: decimal.NewFromInt(1)},
				{AssessmentQuestionID: "q2", Score: decimal.NewFromInt(2)},
			},
		})
	}
	return s
}

func mustCreateStaged(t *testing.T, repo *StagedStudentRepository, s *model.StagedAssessmentStudent) {
	t.Helper()
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create staged: %v", err)
	}
}
