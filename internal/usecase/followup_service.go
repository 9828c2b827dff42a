package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/internal/validator"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// CreateFollowUp schedules a follow-up for a lead. New follow-ups are always
// pending; the only way to a Done status is CompleteFollowUp.
func (s *CrmService) CreateFollowUp(ctx context.Context, payload model.FollowUpPayload) (*model.FollowUp, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if payload.FollowUpAt.Before(utils.Now()) {
		return nil, apperrors.NewFieldValidation("follow_up_at", "must not be in the past")
	}

	followUp, err := s.followUpRepo.Save(ctx, model.FollowUp{
		LeadID:     payload.LeadID,
		FollowUpAt: payload.FollowUpAt,
		Note:       payload.Note,
	})
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewFieldValidation("lead_id", "lead does not exist")
		}
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}

	s.recordActivity(ctx, followUp.LeadID, model.ActivityFollowUpAdded, model.TimelineDetails{
		Action:    "Follow-up scheduled",
		CreatedBy: actorRef(ctx),
		Meta: map[string]interface{}{
			"follow_up_id": followUp.ID,
			"follow_up_at": followUp.FollowUpAt,
			"note":         followUp.Note,
		},
	})
	if orgID, err := session.OrganizationFromContext(ctx); err == nil {
		s.publisher.FollowUpsChanged(ctx, orgID)
	}

	logger.FromContext(ctx).Info("Follow-up created",
		zap.Uint("follow_up_id", followUp.ID), zap.Uint("lead_id", followUp.LeadID))
	return followUp, nil
}

// CompleteFollowUp marks a follow-up done with an outcome. When the payload
// chains a successor, it is created in the same transaction and the lead's
// next_follow_up pointer moves with it. Completing twice is a conflict.
func (s *CrmService) CompleteFollowUp(ctx context.Context, payload model.CompleteFollowUpPayload) (*model.FollowUp, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if !model.IsValidOutcome(payload.Outcome) {
		return nil, apperrors.NewFieldValidation("outcome", fmt.Sprintf("unknown outcome %q", payload.Outcome))
	}
	if payload.NextFollowUp != nil && payload.NextFollowUp.Before(utils.Now()) {
		return nil, apperrors.NewFieldValidation("next_follow_up", "must not be in the past")
	}

	followUp, err := s.followUpRepo.FindByID(ctx, payload.FollowUpID)
	if err != nil {
		return nil, err
	}
	if followUp.IsCompleted {
		return nil, fmt.Errorf("%w: follow-up already completed", apperrors.ErrConflict)
	}

	now := utils.Now()
	followUp.IsCompleted = true
	followUp.CompletedAt = &now
	followUp.Outcome = payload.Outcome
	followUp.NextFollowUpNote = payload.NextFollowUpNote
	followUp.NextFollowUp = payload.NextFollowUp

	var successor *model.FollowUp
	if payload.NextFollowUp != nil {
		successor = &model.FollowUp{
			LeadID:     followUp.LeadID,
			FollowUpAt: *payload.NextFollowUp,
			Note:       payload.NextFollowUpNote,
		}
	}

	if err := s.followUpRepo.Complete(ctx, *followUp, successor); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, followUp.LeadID, model.ActivityFollowUpCompleted, model.TimelineDetails{
		Action:    fmt.Sprintf("Follow-up completed: %s", payload.Outcome),
		ChangedBy: actorRef(ctx),
		Meta: map[string]interface{}{
			"follow_up_id": followUp.ID,
			"outcome":      payload.Outcome,
		},
	})
	if successor != nil {
		s.recordActivity(ctx, successor.LeadID, model.ActivityFollowUpAdded, model.TimelineDetails{
			Action:    "Follow-up scheduled",
			CreatedBy: actorRef(ctx),
			Meta: map[string]interface{}{
				"follow_up_id": successor.ID,
				"follow_up_at": successor.FollowUpAt,
				"note":         successor.Note,
			},
		})
	}
	if orgID, err := session.OrganizationFromContext(ctx); err == nil {
		s.publisher.FollowUpsChanged(ctx, orgID)
	}

	logger.FromContext(ctx).Info("Follow-up completed",
		zap.Uint("follow_up_id", followUp.ID),
		zap.String("outcome", payload.Outcome),
		zap.Bool("chained_successor", successor != nil))
	return followUp, nil
}

// GetFollowUp returns one follow-up with its derived status stamped.
func (s *CrmService) GetFollowUp(ctx context.Context, id uint) (*model.FollowUp, error) {
	followUp, err := s.followUpRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	followUp.ApplyStatus(utils.Now(), s.organizationLocation(ctx, sess.OrganizationID))
	return followUp, nil
}

// ListFollowUps returns a page of follow-ups with derived statuses. The
// status filter buckets over the organization-local day.
func (s *CrmService) ListFollowUps(ctx context.Context, filter model.FollowUpListFilter) (*model.PagedFollowUps, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	loc := s.organizationLocation(ctx, sess.OrganizationID)
	now := utils.Now()
	dayStart := utils.StartOfDay(now, loc)
	dayEnd := utils.EndOfDay(now, loc)

	page, err := s.followUpRepo.List(ctx, filter, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	applyFollowUpStatuses(page.FollowUps, now, loc)
	return page, nil
}

// FollowUpCounts returns the Overdue/Today/Upcoming badge counts.
func (s *CrmService) FollowUpCounts(ctx context.Context) (*model.FollowUpCounts, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := s.dayBounds(ctx, sess.OrganizationID)
	return s.followUpRepo.Counts(ctx, dayStart, dayEnd)
}
