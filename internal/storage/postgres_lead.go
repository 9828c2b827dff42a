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

// SaveLead inserts a new lead for the session's organization.
func (r *PostgresRepo) SaveLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	lead.OrganizationID = orgID
	lead.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).Omit("AssignedOwner").Create(&lead)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveLead Commit", operation)
	observer.ObserveDbOperationDuration("insert", "lead", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save lead after retries",
			zap.String("lead_name", lead.LeadName), zap.Error(commitErr))
		return nil, commitErr
	}
	return &lead, nil
}

// UpdateLead updates a lead's editable fields. The pipeline status is not
// touched here; stage moves go through UpdateLeadStatus.
func (r *PostgresRepo) UpdateLead(ctx context.Context, lead model.Lead) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Lead{}).
			Where("id = ? AND organization_id = ?", lead.ID, orgID).
			Updates(map[string]interface{}{
				"lead_name":           lead.LeadName,
				"phone_number":        lead.PhoneNumber,
				"email":               lead.Email,
				"company_name":        lead.CompanyName,
				"lead_source":         lead.LeadSource,
				"assigned_owner_id":   lead.AssignedOwnerID,
				"expected_deal_value": lead.ExpectedDealValue,
				"priority":            lead.Priority,
				"note":                lead.Note,
				"updated_at":          utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, lead.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateLead Commit", operation)
	observer.ObserveDbOperationDuration("update", "lead", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update lead after retries",
			zap.Uint("lead_id", lead.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// UpdateLeadStatus moves a lead to another pipeline stage.
func (r *PostgresRepo) UpdateLeadStatus(ctx context.Context, id uint, status string) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Lead{}).
			Where("id = ? AND organization_id = ?", id, orgID).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateLeadStatus Commit", operation)
	observer.ObserveDbOperationDuration("update", "lead", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update lead status after retries",
			zap.Uint("lead_id", id), zap.String("status", status), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// SetLeadNextFollowUp stamps the denormalized next_follow_up column used by
// the lead list's follow-up filter. Nil clears it.
func (r *PostgresRepo) SetLeadNextFollowUp(ctx context.Context, id uint, at *time.Time) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Lead{}).
			Where("id = ? AND organization_id = ?", id, orgID).
			Updates(map[string]interface{}{
				"next_follow_up": at,
				"updated_at":     utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SetLeadNextFollowUp Commit", operation)
	observer.ObserveDbOperationDuration("update", "lead", orgID, time.Since(startTime), commitErr)

	return commitErr
}

// FindLeadByID retrieves a lead with its assigned owner preloaded.
func (r *PostgresRepo) FindLeadByID(ctx context.Context, id uint) (*model.Lead, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var lead model.Lead
	operation := func() error {
		result := r.db.WithContext(ctx).Preload("AssignedOwner").
			Where("id = ? AND organization_id = ?", id, orgID).
			First(&lead)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, id)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindLeadByID Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &lead, nil
}

// leadListQuery builds the WHERE clause shared by ListLeads' count and page
// queries. All filters are ANDed.
func (r *PostgresRepo) leadListQuery(ctx context.Context, orgID uint, filter model.LeadListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Lead{}).Where("organization_id = ?", orgID)

	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where(
			"lead_name ILIKE ? OR phone_number ILIKE ? OR email ILIKE ? OR company_name ILIKE ?",
			term, term, term, term,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedOwnerID != 0 {
		query = query.Where("assigned_owner_id = ?", filter.AssignedOwnerID)
	}
	if filter.LeadSource != "" {
		query = query.Where("lead_source = ?", filter.LeadSource)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	switch filter.FollowUpStatus {
	case model.FollowUpStatusOverdue:
		query = query.Where("next_follow_up IS NOT NULL AND next_follow_up < ?", filter.DayStart)
	case model.FollowUpStatusToday:
		query = query.Where("next_follow_up >= ? AND next_follow_up < ?", filter.DayStart, filter.DayEnd)
	case model.FollowUpStatusUpcoming:
		query = query.Where("next_follow_up >= ?", filter.DayEnd)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at < ?", *filter.ToDate)
	}
	return query
}

// ListLeads returns one page of leads matching the filter, newest first,
// with assigned owners preloaded.
func (r *PostgresRepo) ListLeads(ctx context.Context, filter model.LeadListFilter) (*model.PagedLeads, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	filter.Normalize()

	page := &model.PagedLeads{Page: filter.Page, PerPage: filter.PerPage, Leads: []model.Lead{}}
	operation := func() error {
		if err := r.leadListQuery(ctx, orgID, filter).Count(&page.Total).Error; err != nil {
			return checkConstraintViolation(err)
		}
		result := r.leadListQuery(ctx, orgID, filter).
			Preload("AssignedOwner").
			Order("created_at DESC").
			Limit(filter.PerPage).
			Offset(filter.Offset()).
			Find(&page.Leads)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "ListLeads Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return page, nil
}

// ListLeadRefs returns every lead's ID and name for the follow-up picker.
func (r *PostgresRepo) ListLeadRefs(ctx context.Context) ([]model.LeadRef, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var refs []model.LeadRef
	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.Lead{}).
			Select("id, lead_name").
			Where("organization_id = ?", orgID).
			Order("lead_name ASC").
			Scan(&refs)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "ListLeadRefs Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return refs, nil
}

// BulkInsertLeads inserts a batch of imported leads in one transaction.
func (r *PostgresRepo) BulkInsertLeads(ctx context.Context, leads []model.Lead) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	if len(leads) == 0 {
		return nil
	}
	for i := range leads {
		leads[i].OrganizationID = orgID
		leads[i].UpdatedAt = utils.Now()
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Omit("AssignedOwner").CreateInBatches(leads, 100)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "BulkInsertLeads Commit", operation)
	observer.ObserveDbOperationDuration("bulk_insert", "lead", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to bulk insert leads after retries",
			zap.Int("count", len(leads)), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// DeleteLead removes a lead together with its follow-ups and timeline.
func (r *PostgresRepo) DeleteLead(ctx context.Context, id uint) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Where("id = ? AND organization_id = ?", id, orgID).Delete(&model.Lead{})
			if result.Error != nil {
				return checkConstraintViolation(result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: lead %d not found", apperrors.ErrNotFound, id)
			}
			if err := tx.Where("lead_id = ? AND organization_id = ?", id, orgID).
				Delete(&model.FollowUp{}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			if err := tx.Where("lead_id = ? AND organization_id = ?", id, orgID).
				Delete(&model.Activity{}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "DeleteLead Commit", operation)
	observer.ObserveDbOperationDuration("delete", "lead", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to delete lead after retries",
			zap.Uint("lead_id", id), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// CountLeads returns the lead total, optionally restricted to one assignee.
func (r *PostgresRepo) CountLeads(ctx context.Context, assignedOwnerID uint) (int64, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var total int64
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.Lead{}).Where("organization_id = ?", orgID)
		if assignedOwnerID != 0 {
			query = query.Where("assigned_owner_id = ?", assignedOwnerID)
		}
		if err := query.Count(&total).Error; err != nil {
			return checkConstraintViolation(err)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "CountLeads Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return 0, readErr
	}
	return total, nil
}

// CountLeadsByStage groups lead totals by their status string.
func (r *PostgresRepo) CountLeadsByStage(ctx context.Context, assignedOwnerID uint) ([]model.StageLeadCount, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var counts []model.StageLeadCount
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.Lead{}).
			Select("status, COUNT(*) AS total").
			Where("organization_id = ?", orgID)
		if assignedOwnerID != 0 {
			query = query.Where("assigned_owner_id = ?", assignedOwnerID)
		}
		result := query.Group("status").Scan(&counts)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "CountLeadsByStage Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return counts, nil
}

// SumLeadDealValueByStatus returns the lead count and summed expected deal
// value across the given statuses.
func (r *PostgresRepo) SumLeadDealValueByStatus(ctx context.Context, statuses []string, assignedOwnerID uint) (int64, float64, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var row struct {
		Total int64
		Value float64
	}
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.Lead{}).
			Select("COUNT(*) AS total, COALESCE(SUM(expected_deal_value), 0) AS value").
			Where("organization_id = ? AND status IN ?", orgID, statuses)
		if assignedOwnerID != 0 {
			query = query.Where("assigned_owner_id = ?", assignedOwnerID)
		}
		result := query.Scan(&row)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "SumLeadDealValueByStatus Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return 0, 0, readErr
	}
	return row.Total, row.Value, nil
}

// SumLeadDealValueByStatusSince sums expected deal value for leads that
// reached one of the given statuses on or after the cutoff. Used for the
// dashboard's monthly revenue figure, so updated_at stands in for the close
// date.
func (r *PostgresRepo) SumLeadDealValueByStatusSince(ctx context.Context, statuses []string, assignedOwnerID uint, since time.Time) (float64, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var value float64
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.Lead{}).
			Select("COALESCE(SUM(expected_deal_value), 0)").
			Where("organization_id = ? AND status IN ? AND updated_at >= ?", orgID, statuses, since)
		if assignedOwnerID != 0 {
			query = query.Where("assigned_owner_id = ?", assignedOwnerID)
		}
		result := query.Scan(&value)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "SumLeadDealValueByStatusSince Read", operation)
	observer.ObserveDbOperationDuration("read", "lead", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return 0, readErr
	}
	return value, nil
}
