package storage

import (
	"context"
	"time"

	"github.com/campuskul/crm-console-api/internal/model"
)

// StageRepo defines pipeline stage storage operations
type StageRepo interface {
	Save(ctx context.Context, stage model.Stage) (*model.Stage, error)
	Update(ctx context.Context, stage model.Stage) error
	FindByID(ctx context.Context, id uint) (*model.Stage, error)
	FindActive(ctx context.Context) ([]model.Stage, error)
	FindAll(ctx context.Context, search, status string, limit, offset int) ([]model.Stage, int64, error)
	Reorder(ctx context.Context, updates []model.StageOrderUpdate) error
	ToggleStatus(ctx context.Context, id uint) (*model.Stage, error)
	Delete(ctx context.Context, id uint) error
	Close(ctx context.Context) error
}

// LeadRepo defines lead storage operations
type LeadRepo interface {
	Save(ctx context.Context, lead model.Lead) (*model.Lead, error)
	Update(ctx context.Context, lead model.Lead) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	SetNextFollowUp(ctx context.Context, id uint, at *time.Time) error
	FindByID(ctx context.Context, id uint) (*model.Lead, error)
	List(ctx context.Context, filter model.LeadListFilter) (*model.PagedLeads, error)
	ListRefs(ctx context.Context) ([]model.LeadRef, error)
	BulkInsert(ctx context.Context, leads []model.Lead) error
	Delete(ctx context.Context, id uint) error

	CountAll(ctx context.Context, assignedOwnerID uint) (int64, error)
	CountByStage(ctx context.Context, assignedOwnerID uint) ([]model.StageLeadCount, error)
	SumDealValueByStatus(ctx context.Context, statuses []string, assignedOwnerID uint) (int64, float64, error)
	SumDealValueByStatusSince(ctx context.Context, statuses []string, assignedOwnerID uint, since time.Time) (float64, error)
	Close(ctx context.Context) error
}

// FollowUpRepo defines follow-up storage operations
type FollowUpRepo interface {
	Save(ctx context.Context, followUp model.FollowUp) (*model.FollowUp, error)
	Update(ctx context.Context, followUp model.FollowUp) error
	FindByID(ctx context.Context, id uint) (*model.FollowUp, error)
	List(ctx context.Context, filter model.FollowUpListFilter, dayStart, dayEnd time.Time) (*model.PagedFollowUps, error)
	Counts(ctx context.Context, dayStart, dayEnd time.Time) (*model.FollowUpCounts, error)
	Complete(ctx context.Context, followUp model.FollowUp, successor *model.FollowUp) error
	Close(ctx context.Context) error
}

// UserRepo defines user/employee storage operations
type UserRepo interface {
	Save(ctx context.Context, user model.User) (*model.User, error)
	Update(ctx context.Context, user model.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindEmployees(ctx context.Context, search, status string, limit, offset int) ([]model.User, int64, error)
	FindActiveEmployees(ctx context.Context) ([]model.User, error)
	ToggleStatus(ctx context.Context, id uint) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	Close(ctx context.Context) error
}

// ActivityRepo defines lead timeline storage operations
type ActivityRepo interface {
	Save(ctx context.Context, activity model.Activity) error
	FindByLeadID(ctx context.Context, leadID uint) ([]model.Activity, error)
	Close(ctx context.Context) error
}

// OrganizationRepo defines organization storage operations
type OrganizationRepo interface {
	FindByID(ctx context.Context, id uint) (*model.Organization, error)
	Update(ctx context.Context, org model.Organization) error
	Register(ctx context.Context, org *model.Organization, owner *model.User, stages []model.Stage) error
	Close(ctx context.Context) error
}
