package usecase

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
)

func validLeadPayload() model.LeadPayload {
	return model.LeadPayload{
		LeadName:        "Acme Corp",
		PhoneNumber:     "+6281234567890",
		Email:           "buyer@acme.test",
		Status:          "New",
		AssignedOwnerID: 3,
	}
}

func activeStages(names ...string) []model.Stage {
	stages := make([]model.Stage, 0, len(names))
	for i, name := range names {
		stages = append(stages, model.Stage{
			ID:          uint(i + 1),
			StageName:   name,
			StageOrder:  i + 1,
			StageStatus: model.StageStatusEnable,
		})
	}
	return stages
}

func TestCreateLead_Success(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New", "Contacted"), nil)
	f.userRepo.On("FindByID", mock.Anything, uint(3)).
		Return(&model.User{ID: 3, Role: "employee"}, nil)
	f.leadRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Lead")).
		Return(&model.Lead{ID: 10, LeadName: "Acme Corp", Status: "New"}, nil)
	f.activityRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Activity")).Return(nil)
	f.publisher.On("LeadCreated", mock.Anything, mock.AnythingOfType("*model.Lead")).Return()

	lead, err := f.service.CreateLead(ctx, validLeadPayload())

	require.NoError(t, err)
	assert.Equal(t, uint(10), lead.ID)

	// Verify the timeline entry shape
	f.activityRepo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("model.Activity"))
	activity := f.activityRepo.Calls[0].Arguments.Get(1).(model.Activity)
	assert.Equal(t, uint(10), activity.LeadID)
	assert.Equal(t, model.ActivityLeadCreated, activity.ActivityType)
	var details model.TimelineDetails
	require.NoError(t, json.Unmarshal(activity.TimelineDetails, &details))
	assert.Equal(t, "Lead created", details.Action)
	require.NotNil(t, details.CreatedBy)
	assert.Equal(t, testOwnerID, details.CreatedBy.ID)

	f.publisher.AssertCalled(t, "LeadCreated", mock.Anything, mock.AnythingOfType("*model.Lead"))
	f.publisher.AssertNotCalled(t, "FollowUpsChanged", mock.Anything, mock.Anything)
}

func TestCreateLead_WithNextFollowUpBroadcastsCounts(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	at := time.Now().Add(24 * time.Hour)

	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New"), nil)
	f.userRepo.On("FindByID", mock.Anything, uint(3)).
		Return(&model.User{ID: 3}, nil)
	f.leadRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Lead")).
		Return(&model.Lead{ID: 11, Status: "New", NextFollowUp: &at}, nil)
	f.activityRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("LeadCreated", mock.Anything, mock.Anything).Return()
	f.publisher.On("FollowUpsChanged", mock.Anything, testOrgID).Return()

	payload := validLeadPayload()
	payload.NextFollowUp = &at
	_, err := f.service.CreateLead(ctx, payload)

	require.NoError(t, err)
	f.publisher.AssertCalled(t, "FollowUpsChanged", mock.Anything, testOrgID)
}

func TestCreateLead_UnknownStage(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("Contacted"), nil)

	_, err := f.service.CreateLead(ctx, validLeadPayload())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
	f.leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateLead_MissingRequiredFields(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.service.CreateLead(ownerCtx(), model.LeadPayload{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.stageRepo.AssertNotCalled(t, "FindActive", mock.Anything)
}

func TestUpdateLead_RecordsFieldDiffs(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	existing := &model.Lead{
		ID:              10,
		LeadName:        "Acme Corp",
		PhoneNumber:     "+6281234567890",
		Status:          "New",
		AssignedOwnerID: 3,
	}
	f.leadRepo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	f.userRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3}, nil)
	f.leadRepo.On("Update", mock.Anything, mock.AnythingOfType("model.Lead")).Return(nil)
	f.activityRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Activity")).Return(nil)
	f.publisher.On("LeadUpdated", mock.Anything, mock.Anything).Return()

	payload := validLeadPayload()
	payload.LeadName = "Acme Industries"
	payload.Email = ""
	updated, err := f.service.UpdateLead(ctx, 10, payload)

	require.NoError(t, err)
	assert.Equal(t, "Acme Industries", updated.LeadName)
	// Status never changes through a general update
	assert.Equal(t, "New", updated.Status)

	activity := f.activityRepo.Calls[0].Arguments.Get(1).(model.Activity)
	assert.Equal(t, model.ActivityLeadUpdated, activity.ActivityType)
	var details model.TimelineDetails
	require.NoError(t, json.Unmarshal(activity.TimelineDetails, &details))
	require.Contains(t, details.Meta, "lead_name")
	diff := details.Meta["lead_name"].(map[string]interface{})
	assert.Equal(t, "Acme Corp", diff["old"])
	assert.Equal(t, "Acme Industries", diff["new"])
}

func TestUpdateLead_NoChangesSkipsTimeline(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	existing := &model.Lead{
		ID:              10,
		LeadName:        "Acme Corp",
		PhoneNumber:     "+6281234567890",
		Email:           "buyer@acme.test",
		Status:          "New",
		AssignedOwnerID: 3,
	}
	f.leadRepo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	f.userRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3}, nil)
	f.leadRepo.On("Update", mock.Anything, mock.AnythingOfType("model.Lead")).Return(nil)
	f.publisher.On("LeadUpdated", mock.Anything, mock.Anything).Return()

	_, err := f.service.UpdateLead(ctx, 10, validLeadPayload())

	require.NoError(t, err)
	f.activityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChangeLeadStage_Success(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.leadRepo.On("FindByID", mock.Anything, uint(10)).
		Return(&model.Lead{ID: 10, Status: "New"}, nil)
	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New", "Qualified"), nil)
	f.leadRepo.On("UpdateStatus", mock.Anything, uint(10), "Qualified").Return(nil)
	f.activityRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Activity")).Return(nil)
	f.publisher.On("LeadStageChanged", mock.Anything, uint(10), "New", "Qualified").Return()

	lead, err := f.service.ChangeLeadStage(ctx, 10, model.ChangeStagePayload{Status: "Qualified"})

	require.NoError(t, err)
	assert.Equal(t, "Qualified", lead.Status)

	activity := f.activityRepo.Calls[0].Arguments.Get(1).(model.Activity)
	var details model.TimelineDetails
	require.NoError(t, json.Unmarshal(activity.TimelineDetails, &details))
	assert.Equal(t, "Stage changed from New to Qualified", details.Action)
	assert.Equal(t, "New", details.Meta["old_status"])
	assert.Equal(t, "Qualified", details.Meta["new_status"])
	f.publisher.AssertCalled(t, "LeadStageChanged", mock.Anything, uint(10), "New", "Qualified")
}

func TestChangeLeadStage_SameStageIsNoOp(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.leadRepo.On("FindByID", mock.Anything, uint(10)).
		Return(&model.Lead{ID: 10, Status: "New"}, nil)

	lead, err := f.service.ChangeLeadStage(ctx, 10, model.ChangeStagePayload{Status: "New"})

	require.NoError(t, err)
	assert.Equal(t, "New", lead.Status)
	f.leadRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.activityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "LeadStageChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeLeadStage_UnknownStage(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.leadRepo.On("FindByID", mock.Anything, uint(10)).
		Return(&model.Lead{ID: 10, Status: "New"}, nil)
	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New"), nil)

	_, err := f.service.ChangeLeadStage(ctx, 10, model.ChangeStagePayload{Status: "Ghost"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.leadRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestListLeads_EmployeeScopedToOwnAssignments(t *testing.T) {
	f := newTestFixture(t)
	ctx := employeeCtx(7)

	f.leadRepo.On("List", mock.Anything, mock.AnythingOfType("model.LeadListFilter")).
		Return(&model.PagedLeads{Leads: []model.Lead{}}, nil)

	// The employee asks for someone else's leads; the scope is forced back.
	_, err := f.service.ListLeads(ctx, model.LeadListFilter{AssignedOwnerID: 3})

	require.NoError(t, err)
	filter := f.leadRepo.Calls[0].Arguments.Get(1).(model.LeadListFilter)
	assert.Equal(t, uint(7), filter.AssignedOwnerID)
}

func TestListLeads_FollowUpFilterResolvesDayBounds(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	f.expectUTCOrg()

	f.leadRepo.On("List", mock.Anything, mock.AnythingOfType("model.LeadListFilter")).
		Return(&model.PagedLeads{}, nil)

	_, err := f.service.ListLeads(ctx, model.LeadListFilter{FollowUpStatus: model.FollowUpStatusToday})

	require.NoError(t, err)
	filter := f.leadRepo.Calls[0].Arguments.Get(1).(model.LeadListFilter)
	assert.False(t, filter.DayStart.IsZero())
	assert.Equal(t, filter.DayStart.AddDate(0, 0, 1), filter.DayEnd)
}

func TestDeleteLead_PublishesEvent(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.leadRepo.On("Delete", mock.Anything, uint(10)).Return(nil)
	f.publisher.On("LeadDeleted", mock.Anything, uint(10)).Return()

	require.NoError(t, f.service.DeleteLead(ctx, 10))
	f.publisher.AssertCalled(t, "LeadDeleted", mock.Anything, uint(10))
}

func TestDeleteLead_NotFoundSkipsEvent(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.leadRepo.On("Delete", mock.Anything, uint(99)).
		Return(fmt.Errorf("%w: lead 99 not found", apperrors.ErrNotFound))

	err := f.service.DeleteLead(ctx, 99)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.publisher.AssertNotCalled(t, "LeadDeleted", mock.Anything, mock.Anything)
}

func TestExportLeads_RendersCSV(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	value := 1500.0
	f.leadRepo.On("List", mock.Anything, mock.AnythingOfType("model.LeadListFilter")).
		Return(&model.PagedLeads{
			Leads: []model.Lead{{
				ID:                10,
				LeadName:          "Acme Corp",
				PhoneNumber:       "+6281234567890",
				Status:            "Won",
				ExpectedDealValue: &value,
				AssignedOwner:     &model.User{Email: "rep@example.com"},
			}},
			Total: 1,
		}, nil)

	out, err := f.service.ExportLeads(ctx, model.LeadListFilter{})

	require.NoError(t, err)
	csv := string(out)
	assert.Contains(t, csv, "lead_name,phone_number,email")
	assert.Contains(t, csv, "Acme Corp")
	assert.Contains(t, csv, "rep@example.com")
	assert.Contains(t, csv, "1500")
}
