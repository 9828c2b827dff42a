package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/validator"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

// CreateStage adds a pipeline stage. A zero order appends the stage at the
// end of the pipeline.
func (s *CrmService) CreateStage(ctx context.Context, payload model.StagePayload) (*model.Stage, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	order := payload.StageOrder
	if order == 0 {
		_, total, err := s.stageRepo.FindAll(ctx, "", "", 1, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to determine stage order: %w", err)
		}
		order = int(total) + 1
	}

	stage, err := s.stageRepo.Save(ctx, model.Stage{
		StageName:   payload.StageName,
		StageOrder:  order,
		StageStatus: model.StageStatusEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	logger.FromContext(ctx).Info("Stage created",
		zap.Uint("stage_id", stage.ID), zap.String("stage_name", stage.StageName))
	return stage, nil
}

// UpdateStage renames or repositions a stage. Leads referencing the old
// name are left untouched.
func (s *CrmService) UpdateStage(ctx context.Context, id uint, payload model.StagePayload) (*model.Stage, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	stage, err := s.stageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stage.StageName = payload.StageName
	if payload.StageOrder != 0 {
		stage.StageOrder = payload.StageOrder
	}
	if err := s.stageRepo.Update(ctx, *stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}
	return stage, nil
}

// ListActiveStages returns the enabled pipeline in display order. This is
// the stage directory behind pickers and kanban columns.
func (s *CrmService) ListActiveStages(ctx context.Context) ([]model.Stage, error) {
	return s.stageRepo.FindActive(ctx)
}

// ListStages returns the admin stage list with search and status filters.
func (s *CrmService) ListStages(ctx context.Context, search, status string, page, perPage int) ([]model.Stage, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = model.DefaultPerPage
	}
	return s.stageRepo.FindAll(ctx, search, status, perPage, (page-1)*perPage)
}

// ReorderStages applies a full batch of order updates atomically.
func (s *CrmService) ReorderStages(ctx context.Context, updates []model.StageOrderUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no stage order updates given", apperrors.ErrBadRequest)
	}
	for _, u := range updates {
		if err := validator.Validate(u); err != nil {
			return err
		}
	}
	if err := s.stageRepo.Reorder(ctx, updates); err != nil {
		return fmt.Errorf("failed to reorder stages: %w", err)
	}
	logger.FromContext(ctx).Info("Stages reordered", zap.Int("count", len(updates)))
	return nil
}

// ToggleStage flips a stage between enable and disable.
func (s *CrmService) ToggleStage(ctx context.Context, id uint) (*model.Stage, error) {
	stage, err := s.stageRepo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Stage status toggled",
		zap.Uint("stage_id", stage.ID), zap.String("stage_status", stage.StageStatus))
	return stage, nil
}

// DeleteStage removes a stage definition from the pipeline.
func (s *CrmService) DeleteStage(ctx context.Context, id uint) error {
	return s.stageRepo.Delete(ctx, id)
}
