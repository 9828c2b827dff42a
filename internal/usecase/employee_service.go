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
)

// hashPassword wraps bcrypt with the default cost.
func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CreateEmployee provisions an employee account in the caller's
// organization. Owner only; the HTTP layer enforces the role, the service
// guards again.
func (s *CrmService) CreateEmployee(ctx context.Context, payload model.EmployeePayload) (*model.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can manage employees", apperrors.ErrUnauthorized)
	}
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}
	if payload.Password == "" {
		return nil, apperrors.NewFieldValidation("password", "password is required")
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.Save(ctx, model.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         session.RoleEmployee,
		Phone:        payload.Phone,
		Status:       model.UserStatusEnable,
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewFieldValidation("email", "email already in use")
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	logger.FromContext(ctx).Info("Employee created",
		zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// UpdateEmployee edits an employee's basic fields. A non-empty password in
// the payload also rotates the credential.
func (s *CrmService) UpdateEmployee(ctx context.Context, id uint, payload model.EmployeePayload) (*model.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can manage employees", apperrors.ErrUnauthorized)
	}
	if err := validator.Validate(payload); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != session.RoleEmployee {
		return nil, fmt.Errorf("%w: not an employee account", apperrors.ErrBadRequest)
	}

	user.Name = payload.Name
	user.Email = payload.Email
	user.Phone = payload.Phone
	if err := s.userRepo.Update(ctx, *user); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewFieldValidation("email", "email already in use")
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	if payload.Password != "" {
		hash, err := hashPassword(payload.Password)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
	}

	logger.FromContext(ctx).Info("Employee updated", zap.Uint("user_id", id))
	return user, nil
}

// GetEmployee returns one employee by ID.
func (s *CrmService) GetEmployee(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != session.RoleEmployee {
		return nil, fmt.Errorf("%w: employee not found", apperrors.ErrNotFound)
	}
	return user, nil
}

// ListEmployees returns a page of employee accounts.
func (s *CrmService) ListEmployees(ctx context.Context, search, status string, page, perPage int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = model.DefaultPerPage
	}
	return s.userRepo.FindEmployees(ctx, search, status, perPage, (page-1)*perPage)
}

// ListActiveEmployees returns enabled employees for assignment pickers.
func (s *CrmService) ListActiveEmployees(ctx context.Context) ([]model.User, error) {
	return s.userRepo.FindActiveEmployees(ctx)
}

// ToggleEmployeeStatus flips an employee between enable and disable.
// Disabled accounts keep their lead assignments but cannot sign in.
func (s *CrmService) ToggleEmployeeStatus(ctx context.Context, id uint) (*model.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can manage employees", apperrors.ErrUnauthorized)
	}
	user, err := s.userRepo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Employee status toggled",
		zap.Uint("user_id", id), zap.String("status", user.Status))
	return user, nil
}

// DeleteEmployee removes an employee account. Their leads become
// unassigned in list views.
func (s *CrmService) DeleteEmployee(ctx context.Context, id uint) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	if !sess.IsOwner() {
		return fmt.Errorf("%w: only the owner can manage employees", apperrors.ErrUnauthorized)
	}
	if id == sess.UserID {
		return fmt.Errorf("%w: cannot delete your own account", apperrors.ErrBadRequest)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Employee deleted", zap.Uint("user_id", id))
	return nil
}
