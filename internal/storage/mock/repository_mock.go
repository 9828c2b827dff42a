package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/campuskul/crm-console-api/internal/model"
)

// --- StageRepo Mock ---

// StageRepoMock mocks the StageRepo interface
type StageRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *StageRepoMock) Save(ctx context.Context, stage model.Stage) (*model.Stage, error) {
	args := m.Called(ctx, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stage), args.Error(1)
}

// Update mocks the Update method
func (m *StageRepoMock) Update(ctx context.Context, stage model.Stage) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *StageRepoMock) FindByID(ctx context.Context, id uint) (*model.Stage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stage), args.Error(1)
}

// FindActive mocks the FindActive method
func (m *StageRepoMock) FindActive(ctx context.Context) ([]model.Stage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Stage), args.Error(1)
}

// FindAll mocks the FindAll method
func (m *StageRepoMock) FindAll(ctx context.Context, search, status string, limit, offset int) ([]model.Stage, int64, error) {
	args := m.Called(ctx, search, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Stage), args.Get(1).(int64), args.Error(2)
}

// Reorder mocks the Reorder method
func (m *StageRepoMock) Reorder(ctx context.Context, updates []model.StageOrderUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// ToggleStatus mocks the ToggleStatus method
func (m *StageRepoMock) ToggleStatus(ctx context.Context, id uint) (*model.Stage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stage), args.Error(1)
}

// Delete mocks the Delete method
func (m *StageRepoMock) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StageRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- LeadRepo Mock ---

// LeadRepoMock mocks the LeadRepo interface
type LeadRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *LeadRepoMock) Save(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

// Update mocks the Update method
func (m *LeadRepoMock) Update(ctx context.Context, lead model.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// UpdateStatus mocks the UpdateStatus method
func (m *LeadRepoMock) UpdateStatus(ctx context.Context, id uint, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// SetNextFollowUp mocks the SetNextFollowUp method
func (m *LeadRepoMock) SetNextFollowUp(ctx context.Context, id uint, at *time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *LeadRepoMock) FindByID(ctx context.Context, id uint) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

// List mocks the List method
func (m *LeadRepoMock) List(ctx context.Context, filter model.LeadListFilter) (*model.PagedLeads, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PagedLeads), args.Error(1)
}

// ListRefs mocks the ListRefs method
func (m *LeadRepoMock) ListRefs(ctx context.Context) ([]model.LeadRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeadRef), args.Error(1)
}

// BulkInsert mocks the BulkInsert method
func (m *LeadRepoMock) BulkInsert(ctx context.Context, leads []model.Lead) error {
	args := m.Called(ctx, leads)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *LeadRepoMock) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CountAll mocks the CountAll method
func (m *LeadRepoMock) CountAll(ctx context.Context, assignedOwnerID uint) (int64, error) {
	args := m.Called(ctx, assignedOwnerID)
	return args.Get(0).(int64), args.Error(1)
}

// CountByStage mocks the CountByStage method
func (m *LeadRepoMock) CountByStage(ctx context.Context, assignedOwnerID uint) ([]model.StageLeadCount, error) {
	args := m.Called(ctx, assignedOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StageLeadCount), args.Error(1)
}

// SumDealValueByStatus mocks the SumDealValueByStatus method
func (m *LeadRepoMock) SumDealValueByStatus(ctx context.Context, statuses []string, assignedOwnerID uint) (int64, float64, error) {
	args := m.Called(ctx, statuses, assignedOwnerID)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

// SumDealValueByStatusSince mocks the SumDealValueByStatusSince method
func (m *LeadRepoMock) SumDealValueByStatusSince(ctx context.Context, statuses []string, assignedOwnerID uint, since time.Time) (float64, error) {
	args := m.Called(ctx, statuses, assignedOwnerID, since)
	return args.Get(0).(float64), args.Error(1)
}

func (m *LeadRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- FollowUpRepo Mock ---

// FollowUpRepoMock mocks the FollowUpRepo interface
type FollowUpRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *FollowUpRepoMock) Save(ctx context.Context, followUp model.FollowUp) (*model.FollowUp, error) {
	args := m.Called(ctx, followUp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FollowUp), args.Error(1)
}

// Update mocks the Update method
func (m *FollowUpRepoMock) Update(ctx context.Context, followUp model.FollowUp) error {
	args := m.Called(ctx, followUp)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *FollowUpRepoMock) FindByID(ctx context.Context, id uint) (*model.FollowUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FollowUp), args.Error(1)
}

// List mocks the List method
func (m *FollowUpRepoMock) List(ctx context.Context, filter model.FollowUpListFilter, dayStart, dayEnd time.Time) (*model.PagedFollowUps, error) {
	args := m.Called(ctx, filter, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PagedFollowUps), args.Error(1)
}

// Counts mocks the Counts method
func (m *FollowUpRepoMock) Counts(ctx context.Context, dayStart, dayEnd time.Time) (*model.FollowUpCounts, error) {
	args := m.Called(ctx, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FollowUpCounts), args.Error(1)
}

// Complete mocks the Complete method
func (m *FollowUpRepoMock) Complete(ctx context.Context, followUp model.FollowUp, successor *model.FollowUp) error {
	args := m.Called(ctx, followUp, successor)
	return args.Error(0)
}

func (m *FollowUpRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- UserRepo Mock ---

// UserRepoMock mocks the UserRepo interface
type UserRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *UserRepoMock) Save(ctx context.Context, user model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Update mocks the Update method
func (m *UserRepoMock) Update(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *UserRepoMock) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// FindByEmail mocks the FindByEmail method
func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// FindEmployees mocks the FindEmployees method
func (m *UserRepoMock) FindEmployees(ctx context.Context, search, status string, limit, offset int) ([]model.User, int64, error) {
	args := m.Called(ctx, search, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

// FindActiveEmployees mocks the FindActiveEmployees method
func (m *UserRepoMock) FindActiveEmployees(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// ToggleStatus mocks the ToggleStatus method
func (m *UserRepoMock) ToggleStatus(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Delete mocks the Delete method
func (m *UserRepoMock) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- ActivityRepo Mock ---

// ActivityRepoMock mocks the ActivityRepo interface
type ActivityRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *ActivityRepoMock) Save(ctx context.Context, activity model.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

// FindByLeadID mocks the FindByLeadID method
func (m *ActivityRepoMock) FindByLeadID(ctx context.Context, leadID uint) ([]model.Activity, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Activity), args.Error(1)
}

func (m *ActivityRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- OrganizationRepo Mock ---

// OrganizationRepoMock mocks the OrganizationRepo interface
type OrganizationRepoMock struct {
	mock.Mock
}

// FindByID mocks the FindByID method
func (m *OrganizationRepoMock) FindByID(ctx context.Context, id uint) (*model.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

// Update mocks the Update method
func (m *OrganizationRepoMock) Update(ctx context.Context, org model.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

// Register mocks the Register method
func (m *OrganizationRepoMock) Register(ctx context.Context, org *model.Organization, owner *model.User, stages []model.Stage) error {
	args := m.Called(ctx, org, owner, stages)
	return args.Error(0)
}

func (m *OrganizationRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
