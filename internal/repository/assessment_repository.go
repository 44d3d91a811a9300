package repository

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) WithTx(tx *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: tx}
}

// CreateAssessment stores an assessment together with its forms, components,
// questions and choices.
func (r *AssessmentRepository) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AssessmentRepository) FindAssessmentByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindFormWithComponents loads a form with its full question and choice catalog.
func (r *AssessmentRepository) FindFormWithComponents(ctx context.Context, formID string) (*model.AssessmentForm, error) {
	var f model.AssessmentForm
	err := r.DB.WithContext(ctx).
		Preload("Components.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number asc, item_number asc")
		}).
		Preload("Components.Choices").
		First(&f, "id = ?", formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
