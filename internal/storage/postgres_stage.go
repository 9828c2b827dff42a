package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// SaveStage inserts a new pipeline stage for the session's organization.
func (r *PostgresRepo) SaveStage(ctx context.Context, stage model.Stage) (*model.Stage, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	stage.OrganizationID = orgID
	stage.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&stage)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveStage Commit", operation)
	observer.ObserveDbOperationDuration("insert", "stage", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save stage after retries",
			zap.String("stage_name", stage.StageName), zap.Error(commitErr))
		return nil, commitErr
	}
	return &stage, nil
}

// UpdateStage updates a stage's name and order within the organization.
func (r *PostgresRepo) UpdateStage(ctx context.Context, stage model.Stage) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Stage{}).
			Where("id = ? AND organization_id = ?", stage.ID, orgID).
			Updates(map[string]interface{}{
				"stage_name":  stage.StageName,
				"stage_order": stage.StageOrder,
				"updated_at":  utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: stage %d not found", apperrors.ErrNotFound, stage.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateStage Commit", operation)
	observer.ObserveDbOperationDuration("update", "stage", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update stage after retries",
			zap.Uint("stage_id", stage.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindStageByID retrieves a stage by ID, scoped to the organization.
func (r *PostgresRepo) FindStageByID(ctx context.Context, id uint) (*model.Stage, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var stage model.Stage
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND organization_id = ?", id, orgID).
			First(&stage)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: stage %d not found", apperrors.ErrNotFound, id)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindStageByID Read", operation)
	observer.ObserveDbOperationDuration("read", "stage", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &stage, nil
}

// FindActiveStages returns enabled stages ordered by stage_order. This is
// the pipeline as lead forms and kanban columns see it.
func (r *PostgresRepo) FindActiveStages(ctx context.Context) ([]model.Stage, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var stages []model.Stage
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("organization_id = ? AND stage_status = ?", orgID, model.StageStatusEnable).
			Order("stage_order ASC").
			Find(&stages)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindActiveStages Read", operation)
	observer.ObserveDbOperationDuration("read", "stage", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return stages, nil
}

// FindAllStages returns stages for the admin list with optional name search
// and status filter, plus the total count for paging.
func (r *PostgresRepo) FindAllStages(ctx context.Context, search, status string, limit, offset int) ([]model.Stage, int64, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var stages []model.Stage
	var total int64
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.Stage{}).Where("organization_id = ?", orgID)
		if search != "" {
			query = query.Where("stage_name ILIKE ?", "%"+search+"%")
		}
		if status != "" {
			query = query.Where("stage_status = ?", status)
		}
		if err := query.Count(&total).Error; err != nil {
			return checkConstraintViolation(err)
		}
		result := query.Order("stage_order ASC").Limit(limit).Offset(offset).Find(&stages)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindAllStages Read", operation)
	observer.ObserveDbOperationDuration("read", "stage", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, 0, readErr
	}
	return stages, total, nil
}

// ReorderStages applies a batch of order updates in a single transaction.
// Either every stage gets its new position or none do.
func (r *PostgresRepo) ReorderStages(ctx context.Context, updates []model.StageOrderUpdate) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, u := range updates {
				result := tx.Model(&model.Stage{}).
					Where("id = ? AND organization_id = ?", u.ID, orgID).
					Updates(map[string]interface{}{
						"stage_order": u.Order,
						"updated_at":  utils.Now(),
					})
				if result.Error != nil {
					return checkConstraintViolation(result.Error)
				}
				if result.RowsAffected == 0 {
					return fmt.Errorf("%w: stage %d not found", apperrors.ErrNotFound, u.ID)
				}
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "ReorderStages Commit", operation)
	observer.ObserveDbOperationDuration("update", "stage", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to reorder stages after retries",
			zap.Int("updates", len(updates)), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// ToggleStageStatus flips a stage between enable and disable and returns
// the updated row.
func (r *PostgresRepo) ToggleStageStatus(ctx context.Context, id uint) (*model.Stage, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var stage model.Stage
	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND organization_id = ?", id, orgID).First(&stage).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: stage %d not found", apperrors.ErrNotFound, id)
				}
				return checkConstraintViolation(err)
			}
			if stage.StageStatus == model.StageStatusEnable {
				stage.StageStatus = model.StageStatusDisable
			} else {
				stage.StageStatus = model.StageStatusEnable
			}
			stage.UpdatedAt = utils.Now()
			if err := tx.Model(&model.Stage{}).Where("id = ?", stage.ID).
				Updates(map[string]interface{}{
					"stage_status": stage.StageStatus,
					"updated_at":   stage.UpdatedAt,
				}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "ToggleStageStatus Commit", operation)
	observer.ObserveDbOperationDuration("update", "stage", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		return nil, commitErr
	}
	return &stage, nil
}

// DeleteStage removes a stage row. Leads referencing the stage by name keep
// their status string; only the pipeline definition goes away.
func (r *PostgresRepo) DeleteStage(ctx context.Context, id uint) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND organization_id = ?", id, orgID).
			Delete(&model.Stage{})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: stage %d not found", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "DeleteStage Commit", operation)
	observer.ObserveDbOperationDuration("delete", "stage", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to delete stage after retries",
			zap.Uint("stage_id", id), zap.Error(commitErr))
		return commitErr
	}
	return nil
}
