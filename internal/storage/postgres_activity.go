package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// SaveActivity appends one timeline entry. Entries are immutable; there is
// no update path.
func (r *PostgresRepo) SaveActivity(ctx context.Context, activity model.Activity) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	activity.OrganizationID = orgID

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&activity)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveActivity Commit", operation)
	observer.ObserveDbOperationDuration("insert", "activity", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save activity after retries",
			zap.Uint("lead_id", activity.LeadID),
			zap.String("activity_type", activity.ActivityType),
			zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindActivitiesByLeadID returns a lead's timeline, newest first.
func (r *PostgresRepo) FindActivitiesByLeadID(ctx context.Context, leadID uint) ([]model.Activity, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var activities []model.Activity
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("lead_id = ? AND organization_id = ?", leadID, orgID).
			Order("created_at DESC").
			Find(&activities)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindActivitiesByLeadID Read", operation)
	observer.ObserveDbOperationDuration("read", "activity", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return activities, nil
}
