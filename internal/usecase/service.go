package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/campuskul/crm-console-api/internal/events"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/storage"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// CrmService implements the console's business operations on top of the
// repositories and the event publisher.
type CrmService struct {
	stageRepo    storage.StageRepo
	leadRepo     storage.LeadRepo
	followUpRepo storage.FollowUpRepo
	userRepo     storage.UserRepo
	activityRepo storage.ActivityRepo
	orgRepo      storage.OrganizationRepo
	publisher    events.Publisher
	importer     ILeadImporter
	auth         TokenIssuer
}

// NewCrmService creates a new CRM service
func NewCrmService(
	stageRepo storage.StageRepo,
	leadRepo storage.LeadRepo,
	followUpRepo storage.FollowUpRepo,
	userRepo storage.UserRepo,
	activityRepo storage.ActivityRepo,
	orgRepo storage.OrganizationRepo,
	publisher events.Publisher,
	importer ILeadImporter,
	auth TokenIssuer,
) *CrmService {
	return &CrmService{
		stageRepo:    stageRepo,
		leadRepo:     leadRepo,
		followUpRepo: followUpRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		orgRepo:      orgRepo,
		publisher:    publisher,
		importer:     importer,
		auth:         auth,
	}
}

// organizationLocation resolves the session organization's timezone for
// follow-up day boundary math.
func (s *CrmService) organizationLocation(ctx context.Context, organizationID uint) *time.Location {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return time.UTC
	}
	return org.Location()
}

// dayBounds returns today's [start, end) in the organization's timezone.
func (s *CrmService) dayBounds(ctx context.Context, organizationID uint) (time.Time, time.Time) {
	loc := s.organizationLocation(ctx, organizationID)
	now := utils.Now()
	return utils.StartOfDay(now, loc), utils.EndOfDay(now, loc)
}

// stageNameExists checks a status string against the organization's enabled
// pipeline.
func (s *CrmService) stageNameExists(ctx context.Context, status string) (bool, error) {
	stages, err := s.stageRepo.FindActive(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load pipeline stages: %w", err)
	}
	for _, stage := range stages {
		if stage.StageName == status {
			return true, nil
		}
	}
	return false, nil
}

// applyFollowUpStatuses stamps derived statuses onto a page of follow-ups.
func applyFollowUpStatuses(followUps []model.FollowUp, now time.Time, loc *time.Location) {
	for i := range followUps {
		followUps[i].ApplyStatus(now, loc)
	}
}
