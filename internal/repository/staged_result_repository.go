package repository

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type StagedResultRepository struct {
	DB *gorm.DB
}

func NewStagedResultRepository(db *gorm.DB) *StagedResultRepository {
	return &StagedResultRepository{DB: db}
}

func (r *StagedResultRepository) WithTx(tx *gorm.DB) *StagedResultRepository {
	return &StagedResultRepository{DB: tx}
}

func (r *StagedResultRepository) Create(ctx context.Context, result *model.StagedStudentResult) error {
	if result.Status == "" {
		result.Status = model.StagedResultLoaded
	}
	return r.DB.WithContext(ctx).Create(result).Error
}

func (r *StagedResultRepository) FindByID(ctx context.Context, id string) (*model.StagedStudentResult, error) {
	var result model.StagedStudentResult
	err := r.DB.WithContext(ctx).First(&result, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStagedResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindLoadedIDs returns up to limit unprocessed rows, oldest first.
func (r *StagedResultRepository) FindLoadedIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.StagedStudentResult{}).
		Where("status = ?", model.StagedResultLoaded).
		Order("created_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// CompleteLoaded claims a LOADED row by moving it to COMPLETED. Only one
// caller can win; the rest get ErrResultAlreadyProcessed.
func (r *StagedResultRepository) CompleteLoaded(ctx context.Context, id string) error {
	return r.transitionLoaded(ctx, id, model.StagedResultCompleted, "")
}

// FailLoaded marks a LOADED row as ERROR. A row another worker already
// finished is left untouched and ErrResultAlreadyProcessed is returned.
func (r *StagedResultRepository) FailLoaded(ctx context.Context, id, reason string) error {
	return r.transitionLoaded(ctx, id, model.StagedResultError, reason)
}

func (r *StagedResultRepository) transitionLoaded(ctx context.Context, id string, status model.StagedResultStatus, reason string) error {
	res := r.DB.WithContext(ctx).Model(&model.StagedStudentResult{}).
		Where("id = ? AND status = ?", id, model.StagedResultLoaded).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.StagedStudentResult{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return util.ErrStagedResultNotFound
	}
	return fmt.Errorf("%w: %s", util.ErrResultAlreadyProcessed, id)
}
