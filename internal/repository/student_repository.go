package repository

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) WithTx(tx *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: tx}
}

func (r *StudentRepository) FindByID(ctx context.Context, id string) (*model.AssessmentStudent, error) {
	var s model.AssessmentStudent
	err := r.DB.WithContext(ctx).
		Preload("Components.Answers").
		Preload("Components.Choices").
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByAssessmentAndStudent returns the registration of a student on an
// assessment, without components.
func (r *StudentRepository) FindByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (*model.AssessmentStudent, error) {
	var s model.AssessmentStudent
	err := r.DB.WithContext(ctx).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) CountByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AssessmentStudent{}).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		Count(&count).Error
	return count, err
}

// ListByAssessment returns scored students of an assessment, optionally
// restricted to a school of record.
func (r *StudentRepository) ListByAssessment(ctx context.Context, assessmentID, schoolID string) ([]model.AssessmentStudent, error) {
	var list []model.AssessmentStudent
	q := r.DB.WithContext(ctx).
		Preload("Components.Answers").
		Preload("Components.Choices").
		Where("assessment_id = ?", assessmentID)
	if schoolID != "" {
		q = q.Where("school_of_record_school_id = ?", schoolID)
	}
	err := q.Order("pen asc").Find(&list).Error
	return list, err
}

// Create inserts a new main record with its components. The save hook writes
// the first history row.
func (r *StudentRepository) Create(ctx context.Context, s *model.AssessmentStudent) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// ReplaceComponents saves the main record and swaps its entire component
// subtree for s.Components.
func (r *StudentRepository) ReplaceComponents(ctx context.Context, s *model.AssessmentStudent) error {
	db := r.DB.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(s).Error; err != nil {
		return err
	}

	var ids []string
	if err := db.Model(&model.AssessmentStudentComponent{}).
		Where("assessment_student_id = ?", s.ID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := db.Where("assessment_student_component_id IN ?", ids).Delete(&model.AssessmentStudentAnswer{}).Error; err != nil {
			return err
		}
		if err := db.Where("assessment_student_component_id IN ?", ids).Delete(&model.AssessmentStudentChoice{}).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", ids).Delete(&model.AssessmentStudentComponent{}).Error; err != nil {
			return err
		}
	}

	if len(s.Components) == 0 {
		return nil
	}
	for i := range s.Components {
		s.Components[i].AssessmentStudentID = s.ID
	}
	return db.Create(&s.Components).Error
}

func (r *StudentRepository) FindHistory(ctx context.Context, assessmentStudentID string) ([]model.AssessmentStudentHistory, error) {
	var list []model.AssessmentStudentHistory
	err := r.DB.WithContext(ctx).
		Where("assessment_student_id = ?", assessmentStudentID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}
