package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/internal/validator"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error so the endpoint does not leak
// which accounts exist.
func (s *CrmService) Login(ctx context.Context, payload model.LoginPayload) (*model.LoginResult, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthenticated)
		}
		return nil, err
	}
	if user.Status == model.UserStatusDisable {
		return nil, fmt.Errorf("%w: account is disabled", apperrors.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthenticated)
	}

	token, expiresAt, err := s.auth.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logger.FromContext(ctx).Info("User logged in",
		zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return &model.LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Register creates an organization, its owner account and the default
// pipeline in one transaction, then issues the owner's first token.
func (s *CrmService) Register(ctx context.Context, payload model.RegisterPayload) (*model.LoginResult, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if payload.Timezone != "" && !utils.ValidTimezone(payload.Timezone) {
		return nil, apperrors.NewFieldValidation("timezone", fmt.Sprintf("unknown timezone %q", payload.Timezone))
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	org := &model.Organization{
		Name:     payload.OrganizationName,
		Timezone: payload.Timezone,
	}
	owner := &model.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         session.RoleOwner,
		Phone:        payload.Phone,
		Status:       model.UserStatusEnable,
	}
	stages := make([]model.Stage, 0, len(model.DefaultStageNames))
	for i, name := range model.DefaultStageNames {
		stages = append(stages, model.Stage{
			StageName:   name,
			StageOrder:  i + 1,
			StageStatus: model.StageStatusEnable,
		})
	}

	if err := s.orgRepo.Register(ctx, org, owner, stages); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewFieldValidation("email", "email already in use")
		}
		return nil, fmt.Errorf("failed to register organization: %w", err)
	}

	token, expiresAt, err := s.auth.Issue(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logger.FromContext(ctx).Info("Organization registered",
		zap.Uint("organization_id", org.ID), zap.Uint("owner_id", owner.ID))
	return &model.LoginResult{Token: token, ExpiresAt: expiresAt, User: *owner}, nil
}

// GetMyProfile returns the session user's own record.
func (s *CrmService) GetMyProfile(ctx context.Context) (*model.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	return s.userRepo.FindByID(ctx, sess.UserID)
}

// UpdateMyProfile edits the caller's own name and phone. profilePicPath,
// when non-empty, is the stored path of an uploaded image.
func (s *CrmService) UpdateMyProfile(ctx context.Context, payload model.ProfilePayload, profilePicPath string) (*model.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	user.Name = payload.Name
	user.Phone = payload.Phone
	if profilePicPath != "" {
		user.ProfilePic = profilePicPath
	}
	if err := s.userRepo.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	logger.FromContext(ctx).Info("Profile updated", zap.Uint("user_id", user.ID))
	return user, nil
}
