package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/internal/validator"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// actorRef identifies the session user for timeline entries.
func actorRef(ctx context.Context) *model.ActorRef {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return &model.ActorRef{}
	}
	return &model.ActorRef{ID: sess.UserID, Name: sess.Name}
}

// recordActivity appends one timeline entry. Timeline writes ride along
// with the triggering operation; a failure is logged but does not fail it.
func (s *CrmService) recordActivity(ctx context.Context, leadID uint, activityType string, details model.TimelineDetails) {
	activity := model.Activity{
		LeadID:          leadID,
		ActivityType:    activityType,
		TimelineDetails: datatypes.JSON(utils.MustMarshalJSON(details)),
	}
	if err := s.activityRepo.Save(ctx, activity); err != nil {
		logger.FromContext(ctx).Error("Failed to record timeline activity",
			zap.Uint("lead_id", leadID), zap.String("activity_type", activityType), zap.Error(err))
	}
}

// validateLeadReferences checks the payload's stage and assignee against
// the organization's current data.
func (s *CrmService) validateLeadReferences(ctx context.Context, payload model.LeadPayload) error {
	ok, err := s.stageNameExists(ctx, payload.Status)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewFieldValidation("status", fmt.Sprintf("unknown pipeline stage %q", payload.Status))
	}
	if _, err := s.userRepo.FindByID(ctx, payload.AssignedOwnerID); err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NewFieldValidation("assigned_owner_id", "assigned user does not exist")
		}
		return err
	}
	return nil
}

// CreateLead validates and stores a new lead and writes its first timeline
// entry.
func (s *CrmService) CreateLead(ctx context.Context, payload model.LeadPayload) (*model.Lead, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if err := s.validateLeadReferences(ctx, payload); err != nil {
		return nil, err
	}

	lead, err := s.leadRepo.Save(ctx, model.Lead{
		LeadName:          payload.LeadName,
		PhoneNumber:       payload.PhoneNumber,
		Email:             payload.Email,
		CompanyName:       payload.CompanyName,
		LeadSource:        payload.LeadSource,
		Status:            payload.Status,
		AssignedOwnerID:   payload.AssignedOwnerID,
		ExpectedDealValue: payload.ExpectedDealValue,
		Priority:          payload.Priority,
		Note:              payload.Note,
		NextFollowUp:      payload.NextFollowUp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.recordActivity(ctx, lead.ID, model.ActivityLeadCreated, model.TimelineDetails{
		Action:    "Lead created",
		CreatedBy: actorRef(ctx),
	})
	s.publisher.LeadCreated(ctx, lead)
	if lead.NextFollowUp != nil {
		if orgID, err := session.OrganizationFromContext(ctx); err == nil {
			s.publisher.FollowUpsChanged(ctx, orgID)
		}
	}

	logger.FromContext(ctx).Info("Lead created",
		zap.Uint("lead_id", lead.ID), zap.String("lead_name", lead.LeadName))
	return lead, nil
}

// leadFieldDiffs compares the editable fields and returns a per-field
// old/new map for the timeline.
func leadFieldDiffs(old *model.Lead, payload model.LeadPayload) map[string]interface{} {
	diffs := map[string]interface{}{}
	addDiff := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			diffs[field] = model.FieldDiff{Old: oldVal, New: newVal}
		}
	}

	addDiff("lead_name", old.LeadName, payload.LeadName)
	addDiff("phone_number", old.PhoneNumber, payload.PhoneNumber)
	addDiff("email", old.Email, payload.Email)
	addDiff("company_name", old.CompanyName, payload.CompanyName)
	addDiff("lead_source", old.LeadSource, payload.LeadSource)
	addDiff("note", old.Note, payload.Note)
	addDiff("assigned_owner_id",
		strconv.FormatUint(uint64(old.AssignedOwnerID), 10),
		strconv.FormatUint(uint64(payload.AssignedOwnerID), 10))

	formatValue := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	addDiff("expected_deal_value", formatValue(old.ExpectedDealValue), formatValue(payload.ExpectedDealValue))

	formatPriority := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	addDiff("priority", formatPriority(old.Priority), formatPriority(payload.Priority))

	return diffs
}

// UpdateLead edits a lead's fields. Status is deliberately ignored here;
// stage moves go through ChangeLeadStage so the timeline always shows them
// as explicit transitions.
func (s *CrmService) UpdateLead(ctx context.Context, id uint, payload model.LeadPayload) (*model.Lead, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	existing, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, payload.AssignedOwnerID); err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewFieldValidation("assigned_owner_id", "assigned user does not exist")
		}
		return nil, err
	}

	diffs := leadFieldDiffs(existing, payload)

	updated := *existing
	updated.LeadName = payload.LeadName
	updated.PhoneNumber = payload.PhoneNumber
	updated.Email = payload.Email
	updated.CompanyName = payload.CompanyName
	updated.LeadSource = payload.LeadSource
	updated.AssignedOwnerID = payload.AssignedOwnerID
	updated.ExpectedDealValue = payload.ExpectedDealValue
	updated.Priority = payload.Priority
	updated.Note = payload.Note

	if err := s.leadRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	if len(diffs) > 0 {
		s.recordActivity(ctx, id, model.ActivityLeadUpdated, model.TimelineDetails{
			Action:    "Lead details updated",
			UpdatedBy: actorRef(ctx),
			Meta:      diffs,
		})
	}
	s.publisher.LeadUpdated(ctx, &updated)

	return &updated, nil
}

// ChangeLeadStage moves a lead to another pipeline stage. Moving to the
// current stage is a no-op: no write, no timeline entry, no event.
func (s *CrmService) ChangeLeadStage(ctx context.Context, id uint, payload model.ChangeStagePayload) (*model.Lead, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == payload.Status {
		return lead, nil
	}

	ok, err := s.stageNameExists(ctx, payload.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewFieldValidation("status", fmt.Sprintf("unknown pipeline stage %q", payload.Status))
	}

	oldStatus := lead.Status
	if err := s.leadRepo.UpdateStatus(ctx, id, payload.Status); err != nil {
		return nil, fmt.Errorf("failed to change lead stage: %w", err)
	}
	lead.Status = payload.Status

	s.recordActivity(ctx, id, model.ActivityStageChanged, model.TimelineDetails{
		Action:    fmt.Sprintf("Stage changed from %s to %s", oldStatus, payload.Status),
		ChangedBy: actorRef(ctx),
		Meta: map[string]interface{}{
			"old_status": oldStatus,
			"new_status": payload.Status,
		},
	})
	s.publisher.LeadStageChanged(ctx, id, oldStatus, payload.Status)

	logger.FromContext(ctx).Info("Lead stage changed",
		zap.Uint("lead_id", id),
		zap.String("old_status", oldStatus),
		zap.String("new_status", payload.Status))
	return lead, nil
}

// GetLead returns one lead with its assigned owner.
func (s *CrmService) GetLead(ctx context.Context, id uint) (*model.Lead, error) {
	return s.leadRepo.FindByID(ctx, id)
}

// ListLeads returns one page of leads. When a follow-up status filter is
// present the organization-local day bounds are resolved first.
func (s *CrmService) ListLeads(ctx context.Context, filter model.LeadListFilter) (*model.PagedLeads, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	// Employees only ever see their own assignments.
	if !sess.IsOwner() {
		filter.AssignedOwnerID = sess.UserID
	}
	if filter.FollowUpStatus != "" {
		filter.DayStart, filter.DayEnd = s.dayBounds(ctx, sess.OrganizationID)
	}
	return s.leadRepo.List(ctx, filter)
}

// ListLeadRefs returns the minimal lead directory for pickers.
func (s *CrmService) ListLeadRefs(ctx context.Context) ([]model.LeadRef, error) {
	return s.leadRepo.ListRefs(ctx)
}

// LeadActivities returns the lead's timeline, newest first.
func (s *CrmService) LeadActivities(ctx context.Context, leadID uint) ([]model.Activity, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.activityRepo.FindByLeadID(ctx, leadID)
}

// DeleteLead removes a lead and everything hanging off it.
func (s *CrmService) DeleteLead(ctx context.Context, id uint) error {
	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.LeadDeleted(ctx, id)
	logger.FromContext(ctx).Info("Lead deleted", zap.Uint("lead_id", id))
	return nil
}

// exportHeader is the column layout of lead CSV exports, matching the
// import template.
var exportHeader = []string{
	"lead_name", "phone_number", "email", "company_name", "lead_source",
	"status", "assigned_owner_email", "expected_deal_value", "priority", "note",
}

// ExportLeads renders the filtered lead list as CSV. Paging is bypassed;
// the export covers every matching row.
func (s *CrmService) ExportLeads(ctx context.Context, filter model.LeadListFilter) ([]byte, error) {
	filter.Page = 1
	filter.PerPage = exportPageSize
	if filter.FollowUpStatus != "" {
		sess, err := session.FromContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
		}
		filter.DayStart, filter.DayEnd = s.dayBounds(ctx, sess.OrganizationID)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for {
		page, err := s.leadRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to export leads: %w", err)
		}
		for _, lead := range page.Leads {
			record := []string{
				lead.LeadName,
				lead.PhoneNumber,
				lead.Email,
				lead.CompanyName,
				lead.LeadSource,
				lead.Status,
				"",
				"",
				"",
				lead.Note,
			}
			if lead.AssignedOwner != nil {
				record[6] = lead.AssignedOwner.Email
			}
			if lead.ExpectedDealValue != nil {
				record[7] = strconv.FormatFloat(*lead.ExpectedDealValue, 'f', -1, 64)
			}
			if lead.Priority != nil {
				record[8] = *lead.Priority
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
		if int64(filter.Page*filter.PerPage) >= page.Total {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}
	return buf.Bytes(), nil
}

const exportPageSize = 500
