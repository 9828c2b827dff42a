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
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// FindOrganizationByID retrieves an organization row. The ID comes from the
// session, so this read takes it explicitly rather than from context.
func (r *PostgresRepo) FindOrganizationByID(ctx context.Context, id uint) (*model.Organization, error) {
	var org model.Organization
	operation := func() error {
		result := r.db.WithContext(ctx).First(&org, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: organization %d not found", apperrors.ErrNotFound, id)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindOrganizationByID Read", operation)
	observer.ObserveDbOperationDuration("read", "organization", id, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &org, nil
}

// UpdateOrganization updates the organization's profile settings.
func (r *PostgresRepo) UpdateOrganization(ctx context.Context, org model.Organization) error {
	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Organization{}).
			Where("id = ?", org.ID).
			Updates(map[string]interface{}{
				"name":       org.Name,
				"email":      org.Email,
				"phone":      org.Phone,
				"address":    org.Address,
				"logo":       org.Logo,
				"timezone":   org.Timezone,
				"updated_at": utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: organization %d not found", apperrors.ErrNotFound, org.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateOrganization Commit", operation)
	observer.ObserveDbOperationDuration("update", "organization", org.ID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update organization after retries",
			zap.Uint("organization_id", org.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// RegisterOrganization creates the organization, its owner account and the
// seeded default pipeline in a single transaction. Runs before any session
// exists, so nothing here reads the context scope.
func (r *PostgresRepo) RegisterOrganization(ctx context.Context, org *model.Organization, owner *model.User, stages []model.Stage) error {
	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(org).Error; err != nil {
				return checkConstraintViolation(err)
			}
			owner.OrganizationID = org.ID
			if err := tx.Create(owner).Error; err != nil {
				return checkConstraintViolation(err)
			}
			for i := range stages {
				stages[i].OrganizationID = org.ID
			}
			if len(stages) > 0 {
				if err := tx.Create(&stages).Error; err != nil {
					return checkConstraintViolation(err)
				}
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "RegisterOrganization Commit", operation)
	observer.ObserveDbOperationDuration("insert", "organization", org.ID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to register organization after retries",
			zap.String("name", org.Name), zap.Error(commitErr))
		return commitErr
	}
	return nil
}
