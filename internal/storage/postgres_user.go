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

// SaveUser inserts a new user for the session's organization.
func (r *PostgresRepo) SaveUser(ctx context.Context, user model.User) (*model.User, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}
	user.OrganizationID = orgID
	user.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&user)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveUser Commit", operation)
	observer.ObserveDbOperationDuration("insert", "user", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save user after retries",
			zap.String("email", user.Email), zap.Error(commitErr))
		return nil, commitErr
	}
	return &user, nil
}

// UpdateUser updates a user's profile columns. Password and role are not
// touched here.
func (r *PostgresRepo) UpdateUser(ctx context.Context, user model.User) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ? AND organization_id = ?", user.ID, orgID).
			Select(model.UserUpdateColumns()).
			Updates(&user)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d not found", apperrors.ErrNotFound, user.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateUser Commit", operation)
	observer.ObserveDbOperationDuration("update", "user", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update user after retries",
			zap.Uint("user_id", user.ID), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// UpdateUserPassword rotates a user's credential. Kept separate from
// UpdateUser so a profile edit can never clear the hash.
func (r *PostgresRepo) UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ? AND organization_id = ?", id, orgID).
			Updates(map[string]interface{}{
				"password":   passwordHash,
				"updated_at": utils.Now(),
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d not found", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateUserPassword Commit", operation)
	observer.ObserveDbOperationDuration("update", "user", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update user password after retries",
			zap.Uint("user_id", id), zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindUserByID retrieves a user scoped to the organization.
func (r *PostgresRepo) FindUserByID(ctx context.Context, id uint) (*model.User, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var user model.User
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND organization_id = ?", id, orgID).
			First(&user)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d not found", apperrors.ErrNotFound, id)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindUserByID Read", operation)
	observer.ObserveDbOperationDuration("read", "user", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &user, nil
}

// FindUserByEmail retrieves a user across all organizations. Login happens
// before any session exists, so this read is not organization scoped.
func (r *PostgresRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	operation := func() error {
		result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no user with email %s", apperrors.ErrNotFound, email)
			}
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindUserByEmail Read", operation)
	observer.ObserveDbOperationDuration("read", "user", user.OrganizationID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return &user, nil
}

// FindEmployees returns the employee list with optional name/email search
// and status filter, plus the total count for paging. The owner row is
// excluded.
func (r *PostgresRepo) FindEmployees(ctx context.Context, search, status string, limit, offset int) ([]model.User, int64, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var users []model.User
	var total int64
	operation := func() error {
		query := r.db.WithContext(ctx).Model(&model.User{}).
			Where("organization_id = ? AND role = ?", orgID, session.RoleEmployee)
		if search != "" {
			term := "%" + search + "%"
			query = query.Where("name ILIKE ? OR email ILIKE ?", term, term)
		}
		if status != "" {
			query = query.Where("status = ?", status)
		}
		if err := query.Count(&total).Error; err != nil {
			return checkConstraintViolation(err)
		}
		result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindEmployees Read", operation)
	observer.ObserveDbOperationDuration("read", "user", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, 0, readErr
	}
	return users, total, nil
}

// FindActiveEmployees returns enabled employees for assignment pickers.
func (r *PostgresRepo) FindActiveEmployees(ctx context.Context) ([]model.User, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var users []model.User
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("organization_id = ? AND role = ? AND status = ?",
				orgID, session.RoleEmployee, model.UserStatusEnable).
			Order("name ASC").
			Find(&users)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	readErr := retryableOperation(ctx, readPolicy, "FindActiveEmployees Read", operation)
	observer.ObserveDbOperationDuration("read", "user", orgID, time.Since(startTime), readErr)

	if readErr != nil {
		return nil, readErr
	}
	return users, nil
}

// ToggleUserStatus flips a user between enable and disable and returns the
// updated row.
func (r *PostgresRepo) ToggleUserStatus(ctx context.Context, id uint) (*model.User, error) {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	var user model.User
	operation := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND organization_id = ?", id, orgID).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user %d not found", apperrors.ErrNotFound, id)
				}
				return checkConstraintViolation(err)
			}
			if user.Status == model.UserStatusEnable {
				user.Status = model.UserStatusDisable
			} else {
				user.Status = model.UserStatusEnable
			}
			user.UpdatedAt = utils.Now()
			if err := tx.Model(&model.User{}).Where("id = ?", user.ID).
				Updates(map[string]interface{}{
					"status":     user.Status,
					"updated_at": user.UpdatedAt,
				}).Error; err != nil {
				return checkConstraintViolation(err)
			}
			return nil
		})
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "ToggleUserStatus Commit", operation)
	observer.ObserveDbOperationDuration("update", "user", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		return nil, commitErr
	}
	return &user, nil
}

// DeleteUser removes an employee row. Lead assignments keep the dangling
// assigned_owner_id; the console renders those as unassigned.
func (r *PostgresRepo) DeleteUser(ctx context.Context, id uint) error {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID: %w", apperrors.ErrUnauthenticated, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND organization_id = ? AND role = ?", id, orgID, session.RoleEmployee).
			Delete(&model.User{})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: employee %d not found", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "DeleteUser Commit", operation)
	observer.ObserveDbOperationDuration("delete", "user", orgID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to delete employee after retries",
			zap.Uint("user_id", id), zap.Error(commitErr))
		return commitErr
	}
	return nil
}
