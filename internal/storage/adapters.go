package storage

import (
	"context"
	"time"

	"github.com/campuskul/crm-console-api/internal/model"
)

// StageRepoAdapter adapts the PostgresRepo to the StageRepo interface
type StageRepoAdapter struct {
	postgres *PostgresRepo
}

// NewStageRepoAdapter creates a new stage repository adapter
func NewStageRepoAdapter(postgres *PostgresRepo) StageRepo {
	return &StageRepoAdapter{postgres: postgres}
}

func (a *StageRepoAdapter) Save(ctx context.Context, stage model.Stage) (*model.Stage, error) {
	return a.postgres.SaveStage(ctx, stage)
}

func (a *StageRepoAdapter) Update(ctx context.Context, stage model.Stage) error {
	return a.postgres.UpdateStage(ctx, stage)
}

func (a *StageRepoAdapter) FindByID(ctx context.Context, id uint) (*model.Stage, error) {
	return a.postgres.FindStageByID(ctx, id)
}

func (a *StageRepoAdapter) FindActive(ctx context.Context) ([]model.Stage, error) {
	return a.postgres.FindActiveStages(ctx)
}

func (a *StageRepoAdapter) FindAll(ctx context.Context, search, status string, limit, offset int) ([]model.Stage, int64, error) {
	return a.postgres.FindAllStages(ctx, search, status, limit, offset)
}

func (a *StageRepoAdapter) Reorder(ctx context.Context, updates []model.StageOrderUpdate) error {
	return a.postgres.ReorderStages(ctx, updates)
}

func (a *StageRepoAdapter) ToggleStatus(ctx context.Context, id uint) (*model.Stage, error) {
	return a.postgres.ToggleStageStatus(ctx, id)
}

func (a *StageRepoAdapter) Delete(ctx context.Context, id uint) error {
	return a.postgres.DeleteStage(ctx, id)
}

func (a *StageRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// LeadRepoAdapter adapts the PostgresRepo to the LeadRepo interface
type LeadRepoAdapter struct {
	postgres *PostgresRepo
}

// NewLeadRepoAdapter creates a new lead repository adapter
func NewLeadRepoAdapter(postgres *PostgresRepo) LeadRepo {
	return &LeadRepoAdapter{postgres: postgres}
}

func (a *LeadRepoAdapter) Save(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	return a.postgres.SaveLead(ctx, lead)
}

func (a *LeadRepoAdapter) Update(ctx context.Context, lead model.Lead) error {
	return a.postgres.UpdateLead(ctx, lead)
}

func (a *LeadRepoAdapter) UpdateStatus(ctx context.Context, id uint, status string) error {
	return a.postgres.UpdateLeadStatus(ctx, id, status)
}

func (a *LeadRepoAdapter) SetNextFollowUp(ctx context.Context, id uint, at *time.Time) error {
	return a.postgres.SetLeadNextFollowUp(ctx, id, at)
}

func (a *LeadRepoAdapter) FindByID(ctx context.Context, id uint) (*model.Lead, error) {
	return a.postgres.FindLeadByID(ctx, id)
}

func (a *LeadRepoAdapter) List(ctx context.Context, filter model.LeadListFilter) (*model.PagedLeads, error) {
	return a.postgres.ListLeads(ctx, filter)
}

func (a *LeadRepoAdapter) ListRefs(ctx context.Context) ([]model.LeadRef, error) {
	return a.postgres.ListLeadRefs(ctx)
}

func (a *LeadRepoAdapter) BulkInsert(ctx context.Context, leads []model.Lead) error {
	return a.postgres.BulkInsertLeads(ctx, leads)
}

func (a *LeadRepoAdapter) Delete(ctx context.Context, id uint) error {
	return a.postgres.DeleteLead(ctx, id)
}

func (a *LeadRepoAdapter) CountAll(ctx context.Context, assignedOwnerID uint) (int64, error) {
	return a.postgres.CountLeads(ctx, assignedOwnerID)
}

func (a *LeadRepoAdapter) CountByStage(ctx context.Context, assignedOwnerID uint) ([]model.StageLeadCount, error) {
	return a.postgres.CountLeadsByStage(ctx, assignedOwnerID)
}

func (a *LeadRepoAdapter) SumDealValueByStatus(ctx context.Context, statuses []string, assignedOwnerID uint) (int64, float64, error) {
	return a.postgres.SumLeadDealValueByStatus(ctx, statuses, assignedOwnerID)
}

func (a *LeadRepoAdapter) SumDealValueByStatusSince(ctx context.Context, statuses []string, assignedOwnerID uint, since time.Time) (float64, error) {
	return a.postgres.SumLeadDealValueByStatusSince(ctx, statuses, assignedOwnerID, since)
}

func (a *LeadRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// FollowUpRepoAdapter adapts the PostgresRepo to the FollowUpRepo interface
type FollowUpRepoAdapter struct {
	postgres *PostgresRepo
}

// NewFollowUpRepoAdapter creates a new follow-up repository adapter
func NewFollowUpRepoAdapter(postgres *PostgresRepo) FollowUpRepo {
	return &FollowUpRepoAdapter{postgres: postgres}
}

func (a *FollowUpRepoAdapter) Save(ctx context.Context, followUp model.FollowUp) (*model.FollowUp, error) {
	return a.postgres.SaveFollowUp(ctx, followUp)
}

func (a *FollowUpRepoAdapter) Update(ctx context.Context, followUp model.FollowUp) error {
	return a.postgres.UpdateFollowUp(ctx, followUp)
}

func (a *FollowUpRepoAdapter) FindByID(ctx context.Context, id uint) (*model.FollowUp, error) {
	return a.postgres.FindFollowUpByID(ctx, id)
}

func (a *FollowUpRepoAdapter) List(ctx context.Context, filter model.FollowUpListFilter, dayStart, dayEnd time.Time) (*model.PagedFollowUps, error) {
	return a.postgres.ListFollowUps(ctx, filter, dayStart, dayEnd)
}

func (a *FollowUpRepoAdapter) Counts(ctx context.Context, dayStart, dayEnd time.Time) (*model.FollowUpCounts, error) {
	return a.postgres.CountFollowUps(ctx, dayStart, dayEnd)
}

func (a *FollowUpRepoAdapter) Complete(ctx context.Context, followUp model.FollowUp, successor *model.FollowUp) error {
	return a.postgres.CompleteFollowUp(ctx, followUp, successor)
}

func (a *FollowUpRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// UserRepoAdapter adapts the PostgresRepo to the UserRepo interface
type UserRepoAdapter struct {
	postgres *PostgresRepo
}

// NewUserRepoAdapter creates a new user repository adapter
func NewUserRepoAdapter(postgres *PostgresRepo) UserRepo {
	return &UserRepoAdapter{postgres: postgres}
}

func (a *UserRepoAdapter) Save(ctx context.Context, user model.User) (*model.User, error) {
	return a.postgres.SaveUser(ctx, user)
}

func (a *UserRepoAdapter) Update(ctx context.Context, user model.User) error {
	return a.postgres.UpdateUser(ctx, user)
}

func (a *UserRepoAdapter) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return a.postgres.UpdateUserPassword(ctx, id, passwordHash)
}

func (a *UserRepoAdapter) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return a.postgres.FindUserByID(ctx, id)
}

func (a *UserRepoAdapter) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return a.postgres.FindUserByEmail(ctx, email)
}

func (a *UserRepoAdapter) FindEmployees(ctx context.Context, search, status string, limit, offset int) ([]model.User, int64, error) {
	return a.postgres.FindEmployees(ctx, search, status, limit, offset)
}

func (a *UserRepoAdapter) FindActiveEmployees(ctx context.Context) ([]model.User, error) {
	return a.postgres.FindActiveEmployees(ctx)
}

func (a *UserRepoAdapter) ToggleStatus(ctx context.Context, id uint) (*model.User, error) {
	return a.postgres.ToggleUserStatus(ctx, id)
}

func (a *UserRepoAdapter) Delete(ctx context.Context, id uint) error {
	return a.postgres.DeleteUser(ctx, id)
}

func (a *UserRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// ActivityRepoAdapter adapts the PostgresRepo to the ActivityRepo interface
type ActivityRepoAdapter struct {
	postgres *PostgresRepo
}

// NewActivityRepoAdapter creates a new activity repository adapter
func NewActivityRepoAdapter(postgres *PostgresRepo) ActivityRepo {
	return &ActivityRepoAdapter{postgres: postgres}
}

func (a *ActivityRepoAdapter) Save(ctx context.Context, activity model.Activity) error {
	return a.postgres.SaveActivity(ctx, activity)
}

func (a *ActivityRepoAdapter) FindByLeadID(ctx context.Context, leadID uint) ([]model.Activity, error) {
	return a.postgres.FindActivitiesByLeadID(ctx, leadID)
}

func (a *ActivityRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// OrganizationRepoAdapter adapts the PostgresRepo to the OrganizationRepo interface
type OrganizationRepoAdapter struct {
	postgres *PostgresRepo
}

// NewOrganizationRepoAdapter creates a new organization repository adapter
func NewOrganizationRepoAdapter(postgres *PostgresRepo) OrganizationRepo {
	return &OrganizationRepoAdapter{postgres: postgres}
}

func (a *OrganizationRepoAdapter) FindByID(ctx context.Context, id uint) (*model.Organization, error) {
	return a.postgres.FindOrganizationByID(ctx, id)
}

func (a *OrganizationRepoAdapter) Update(ctx context.Context, org model.Organization) error {
	return a.postgres.UpdateOrganization(ctx, org)
}

func (a *OrganizationRepoAdapter) Register(ctx context.Context, org *model.Organization, owner *model.User, stages []model.Stage) error {
	return a.postgres.RegisterOrganization(ctx, org, owner, stages)
}

func (a *OrganizationRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}
