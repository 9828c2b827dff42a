package usecase

import (
	"context"
	"fmt"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// Closed-deal stage names. These come from the default pipeline; renamed
// stages simply drop out of the closed aggregates.
var (
	wonStatuses  = []string{"Won"}
	lostStatuses = []string{"Lost"}
)

// OwnerSummary aggregates the whole organization for the owner dashboard.
func (s *CrmService) OwnerSummary(ctx context.Context) (*model.DashboardSummary, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return nil, fmt.Errorf("%w: owner dashboard requires the owner role", apperrors.ErrUnauthorized)
	}
	return s.dashboardSummary(ctx, 0)
}

// EmployeeSummary is the owner summary scoped to the caller's assigned
// leads.
func (s *CrmService) EmployeeSummary(ctx context.Context) (*model.DashboardSummary, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	return s.dashboardSummary(ctx, sess.UserID)
}

// dashboardSummary builds the dashboard payload. assignedOwnerID zero means
// organization-wide.
func (s *CrmService) dashboardSummary(ctx context.Context, assignedOwnerID uint) (*model.DashboardSummary, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	total, err := s.leadRepo.CountAll(ctx, assignedOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	byStage, err := s.leadRepo.CountByStage(ctx, assignedOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by stage: %w", err)
	}
	stages, err := s.stageRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline stages: %w", err)
	}

	wonCount, wonValue, err := s.leadRepo.SumDealValueByStatus(ctx, wonStatuses, assignedOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate won deals: %w", err)
	}
	lostCount, lostValue, err := s.leadRepo.SumDealValueByStatus(ctx, lostStatuses, assignedOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lost deals: %w", err)
	}

	loc := s.organizationLocation(ctx, sess.OrganizationID)
	monthStart := utils.StartOfMonth(utils.Now(), loc)
	monthlyRevenue, err := s.leadRepo.SumDealValueByStatusSince(ctx, wonStatuses, assignedOwnerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly revenue: %w", err)
	}

	dayStart, dayEnd := s.dayBounds(ctx, sess.OrganizationID)
	counts, err := s.followUpRepo.Counts(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	return &model.DashboardSummary{
		TotalLeads:   total,
		LeadsByStage: byStage,
		Stages:       stages,
		Closed: model.ClosedDeals{
			WonCount:  wonCount,
			LostCount: lostCount,
			WonValue:  wonValue,
			LostValue: lostValue,
		},
		MonthlyRevenue: monthlyRevenue,
		FollowUps:      *counts,
	}, nil
}
