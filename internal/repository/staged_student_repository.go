package repository

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StagedStudentRepository struct {
	DB *gorm.DB
}

func NewStagedStudentRepository(db *gorm.DB) *StagedStudentRepository {
	return &StagedStudentRepository{DB: db}
}

func (r *StagedStudentRepository) WithTx(tx *gorm.DB) *StagedStudentRepository {
	return &StagedStudentRepository{DB: tx}
}

// FindByID loads a staged student with its components, answers and choices.
func (r *StagedStudentRepository) FindByID(ctx context.Context, id string) (*model.StagedAssessmentStudent, error) {
	var s model.StagedAssessmentStudent
	err := r.DB.WithContext(ctx).
		Preload("Components.Answers").
		Preload("Components.Choices").
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStagedStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByAssessmentAndPen finds the staged row a new batch result should update.
func (r *StagedStudentRepository) FindByAssessmentAndPen(ctx context.Context, assessmentID, pen string) (*model.StagedAssessmentStudent, error) {
	var s model.StagedAssessmentStudent
	err := r.DB.WithContext(ctx).
		Preload("Components.Answers").
		Preload("Components.Choices").
		Where("assessment_id = ? AND pen = ?", assessmentID, pen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStagedStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StagedStudentRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]model.StagedAssessmentStudent, error) {
	var list []model.StagedAssessmentStudent
	err := r.DB.WithContext(ctx).
		Preload("Components.Answers").
		Preload("Components.Choices").
		Where("assessment_id = ?", assessmentID).
		Order("pen asc").
		Find(&list).Error
	return list, err
}

// Create inserts a staged student together with its component subtree.
func (r *StagedStudentRepository) Create(ctx context.Context, s *model.StagedAssessmentStudent) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// Update saves the staged row's own columns and swaps in the given
// components. Existing components for the same assessment components are
// deleted first, as is any component outside formComponentIDs, so the subtree
// only ever holds components of the row's current form. A nil
// formComponentIDs keeps components of every form.
func (r *StagedStudentRepository) Update(ctx context.Context, s *model.StagedAssessmentStudent, components []model.StagedAssessmentStudentComponent, formComponentIDs []string) error {
	db := r.DB.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(s).Error; err != nil {
		return err
	}

	replaced := make([]string, 0, len(components))
	for i := range components {
		components[i].StagedAssessmentStudentID = s.ID
		replaced = append(replaced, components[i].AssessmentComponentID)
	}

	var stale *gorm.DB
	switch {
	case len(replaced) > 0 && len(formComponentIDs) > 0:
		stale = db.Where("assessment_component_id IN ?", replaced).Or("assessment_component_id NOT IN ?", formComponentIDs)
	case len(replaced) > 0:
		stale = db.Where("assessment_component_id IN ?", replaced)
	case len(formComponentIDs) > 0:
		stale = db.Where("assessment_component_id NOT IN ?", formComponentIDs)
	default:
		return nil
	}

	var ids []string
	if err := db.Model(&model.StagedAssessmentStudentComponent{}).
		Where("staged_assessment_student_id = ?", s.ID).
		Where(stale).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if err := deleteStagedComponents(db, ids); err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}
	return db.Create(&components).Error
}

// Delete removes a staged student and its whole subtree.
func (r *StagedStudentRepository) Delete(ctx context.Context, id string) error {
	db := r.DB.WithContext(ctx)
	var ids []string
	if err := db.Model(&model.StagedAssessmentStudentComponent{}).
		Where("staged_assessment_student_id = ?", id).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if err := deleteStagedComponents(db, ids); err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.StagedAssessmentStudent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrStagedStudentNotFound
	}
	return nil
}

func deleteStagedComponents(db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := db.Where("staged_assessment_student_component_id IN ?", ids).Delete(&model.StagedAssessmentStudentAnswer{}).Error; err != nil {
		return err
	}
	if err := db.Where("staged_assessment_student_component_id IN ?", ids).Delete(&model.StagedAssessmentStudentChoice{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.StagedAssessmentStudentComponent{}).Error
}

// MarkReadyForTransfer moves every eligible staged row to TRANSFER.
func (r *StagedStudentRepository) MarkReadyForTransfer(ctx context.Context, updateUser string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.StagedAssessmentStudent{}).
		Where("staged_status IN ?", model.TransferEligibleStatuses).
		Updates(map[string]interface{}{
			"staged_status": model.StagedStatusTransfer,
			"update_user":   updateUser,
		})
	return res.RowsAffected, res.Error
}

// FindBatchOfTransferIDs returns up to limit TRANSFER rows, least recently
// updated first.
func (r *StagedStudentRepository) FindBatchOfTransferIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.StagedAssessmentStudent{}).
		Where("staged_status = ?", model.StagedStatusTransfer).
		Order("updated_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// Claim flips one row from TRANSFER to TRANSFERED. Only one caller can win.
func (r *StagedStudentRepository) Claim(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.StagedAssessmentStudent{}).
		Where("id = ? AND staged_status = ?", id, model.StagedStatusTransfer).
		Update("staged_status", model.StagedStatusTransferred)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseStaleClaims returns rows claimed before the cutoff to TRANSFER.
func (r *StagedStudentRepository) ReleaseStaleClaims(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.StagedAssessmentStudent{}).
		Where("staged_status = ? AND updated_at < ?", model.StagedStatusTransferred, before).
		Update("staged_status", model.StagedStatusTransfer)
	return res.RowsAffected, res.Error
}

func (r *StagedStudentRepository) CountByStatus(ctx context.Context, status model.StagedStatus) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.StagedAssessmentStudent{}).
		Where("staged_status = ?", status).
		Count(&count).Error
	return count, err
}
