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

// SaveFollowUp inserts a scheduled follow-up and stamps the parent lead's
// next_follow_up column in the same transaction.
func (r *PostgresRepo) SaveFollowUp(ctx context.Context, followUp model.FollowUp) (*model.FollowUp, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	followUp.OrganizationID = orgID
	followUp.UpdatedAt = utils.Now()

	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var leadCount int64
			if err := tx.Model(&model.Lead{}).
				Where("id = ? AND organization_id = ?", followUp.LeadID, orgID).
				Count(&leadCount).Error; err != nil {
				return checkConstraintViolation(err)
			}
			if leadCount == 0 {
				return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, followUp.LeadID)
			}
			if err := tx.Omit("Lead").Create(&followUp).Error; err != nil {
				return checkConstraintViolation(err)
			}
			if err := tx.Model(&model.Lead{}).
				Where("id = ? AND organization_id = ?", followUp.LeadID, orgID).
				Updates(map[string]interface{}{
					"next_follow_up": followUp.FollowUpAt,
					"updated_at":     utils.Now(),
				}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveFollowUp Commit", operation)
	observer.ObserveDbOperationDuration("insert", "follow_up", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save follow-up after retries",
			zap.Uint("lead_id", followUp.LeadID), zap.Error(commitErr))
		return nil, commitErr
	}
	return &followUp, nil
}

// UpdateFollowUp updates a pending follow-up's schedule and note.
func (r *PostgresRepo) UpdateFollowUp(ctx context.Context, followUp model.FollowUp) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.FollowUp{}).
			Where("id = ? AND organization_id = ?", followUp.ID, orgID).
			Updates(map[string]interface{}{
				"follow_up_at": followUp.FollowUpAt,
				"note":         followUp.Note,
				"updated_at":   utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: follow-up %d not found", apperrors.ErrNotFound, followUp.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateFollowUp Commit", operation)
	observer.ObserveDbOperationDuration("update", "follow_up", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update follow-up after retries",
			zap.Uint("follow_up_id", followUp.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindFollowUpByID retrieves a follow-up with its lead preloaded.
func (r *PostgresRepo) FindFollowUpByID(ctx context.Context, id uint) (*model.FollowUp, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var followUp model.FollowUp
	operation := func() error {
		result := r.db.WithContext(ctx).Preload("Lead").
			Where("id = ? AND organization_id = ?", id, orgID).
			First(&followUp)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: follow-up %d not found", apperrors.ErrNotFound, id)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindFollowUpByID Read", operation)
	observer.ObserveDbOperationDuration("read", "follow_up", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &followUp, nil
}

// followUpStatusClause translates a derived status bucket into SQL over
// follow_up_at and is_completed given today's bounds.
func followUpStatusClause(query *gorm.DB, status string, dayStart, dayEnd time.Time) *gorm.DB {
	switch status {
	case model.FollowUpStatusDone:
		return query.Where("is_completed = ?", true)
	case model.FollowUpStatusOverdue:
		return query.Where("is_completed = ? AND follow_up_at < ?", false, dayStart)
	case model.FollowUpStatusToday:
		return query.Where("is_completed = ? AND follow_up_at >= ? AND follow_up_at < ?", false, dayStart, dayEnd)
	case model.FollowUpStatusUpcoming:
		return query.Where("is_completed = ? AND follow_up_at >= ?", false, dayEnd)
	default:
		return query
	}
}

// ListFollowUps returns one page of follow-ups with leads preloaded,
// soonest first. The search term matches the parent lead's name or phone.
func (r *PostgresRepo) ListFollowUps(ctx context.Context, filter model.FollowUpListFilter, dayStart, dayEnd time.Time) (*model.PagedFollowUps, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	filter.Normalize()

	buildQuery := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&model.FollowUp{}).
			Where("follow_ups.organization_id = ?", orgID)
		if filter.Search != "" {
			term := "%" + filter.Search + "%"
			query = query.
				Joins("JOIN leads ON leads.id = follow_ups.lead_id").
				Where("leads.lead_name ILIKE ? OR leads.phone_number ILIKE ?", term, term)
		}
		return followUpStatusClause(query, filter.FollowUpStatus, dayStart, dayEnd)
	}

	page := &model.PagedFollowUps{Page: filter.Page, PerPage: filter.PerPage, FollowUps: []model.FollowUp{}}
	operation := func() error {
		if err := buildQuery().Count(&page.Total).Error; err != nil {
			return checkConstraintViolation(err)
		}
		result := buildQuery().
			Preload("Lead").
			Order("follow_up_at ASC").
			Limit(filter.PerPage).
			Offset(filter.Offset()).
			Find(&page.FollowUps)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "ListFollowUps Read", operation)
	observer.ObserveDbOperationDuration("read", "follow_up", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return page, nil
}

// CountFollowUps computes the Overdue/Today/Upcoming totals over pending
// follow-ups in a single scan.
func (r *PostgresRepo) CountFollowUps(ctx context.Context, dayStart, dayEnd time.Time) (*model.FollowUpCounts, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var counts model.FollowUpCounts
	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.FollowUp{}).
			Select(
				"COUNT(*) FILTER (WHERE follow_up_at < ?) AS overdue, "+
					"COUNT(*) FILTER (WHERE follow_up_at >= ? AND follow_up_at < ?) AS today, "+
					"COUNT(*) FILTER (WHERE follow_up_at >= ?) AS upcoming",
				dayStart, dayStart, dayEnd, dayEnd,
			).
			Where("organization_id = ? AND is_completed = ?", orgID, false).
			Scan(&counts)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "CountFollowUps Read", operation)
	observer.ObserveDbOperationDuration("read", "follow_up", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &counts, nil
}

// CompleteFollowUp marks a follow-up done, optionally creates its successor
// and keeps the parent lead's next_follow_up column consistent. The whole
// operation is one transaction.
func (r *PostgresRepo) CompleteFollowUp(ctx context.Context, followUp model.FollowUp, successor *model.FollowUp) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&model.FollowUp{}).
				Where("id = ? AND organization_id = ? AND is_completed = ?", followUp.ID, orgID, false).
				Updates(map[string]interface{}{
					"is_completed":        true,
					"completed_at":        followUp.CompletedAt,
					"outcome":             followUp.Outcome,
					"next_follow_up_note": followUp.NextFollowUpNote,
					"next_follow_up":      followUp.NextFollowUp,
					"updated_at":          utils.Now(),
				})
			if result.Error != nil {
				return checkConstraintViolation(result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: follow-up %d is already completed or missing", apperrors.ErrConflict, followUp.ID)
			}

			if successor != nil {
				successor.OrganizationID = orgID
				successor.UpdatedAt = utils.Now()
				if err := tx.Omit("Lead").Create(successor).Error; err != nil {
					return checkConstraintViolation(err)
				}
			}

			// Restamp the lead from whatever is still pending. Other
			// scheduled follow-ups survive completion of this one.
			var nextAt *time.Time
			if err := tx.Model(&model.FollowUp{}).
				Select("MIN(follow_up_at)").
				Where("lead_id = ? AND organization_id = ? AND is_completed = ?", followUp.LeadID, orgID, false).
				Scan(&nextAt).Error; err != nil {
				return checkConstraintViolation(err)
			}
			if err := tx.Model(&model.Lead{}).
				Where("id = ? AND organization_id = ?", followUp.LeadID, orgID).
				Updates(map[string]interface{}{
					"next_follow_up": nextAt,
					"updated_at":     utils.Now(),
				}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "CompleteFollowUp Commit", operation)
	observer.ObserveDbOperationDuration("update", "follow_up", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to complete follow-up after retries",
			zap.Uint("follow_up_id", followUp.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}
