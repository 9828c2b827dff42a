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

// GetOrganization returns the caller's organization profile. The path
// carries an ID for historical reasons; anything but the session's own
// organization is rejected.
func (s *CrmService) GetOrganization(ctx context.Context, id uint) (*model.Organization, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if id != orgID {
		return nil, fmt.Errorf("%w: organization mismatch", apperrors.ErrUnauthorized)
	}
	return s.orgRepo.FindByID(ctx, orgID)
}

// UpdateOrganization edits the organization profile. logoPath, when
// non-empty, is the stored path of an uploaded logo. Owner only.
func (s *CrmService) UpdateOrganization(ctx context.Context, id uint, payload model.OrganizationPayload, logoPath string) (*model.Organization, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can edit the organization", apperrors.ErrUnauthorized)
	}
	if id != sess.OrganizationID {
		return nil, fmt.Errorf("%w: organization mismatch", apperrors.ErrUnauthorized)
	}
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if payload.Timezone != "" && !utils.ValidTimezone(payload.Timezone) {
		return nil, apperrors.NewFieldValidation("timezone", fmt.Sprintf("unknown timezone %q", payload.Timezone))
	}

	org, err := s.orgRepo.FindByID(ctx, sess.OrganizationID)
	if err != nil {
		return nil, err
	}
	org.Name = payload.Name
	org.Email = payload.Email
	org.Phone = payload.Phone
	org.Address = payload.Address
	if payload.Timezone != "" {
		org.Timezone = payload.Timezone
	}
	if logoPath != "" {
		org.Logo = logoPath
	}
	if err := s.orgRepo.Update(ctx, *org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	logger.FromContext(ctx).Info("Organization updated", zap.Uint("organization_id", org.ID))
	return org, nil
}
