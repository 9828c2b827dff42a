package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
)

func TestCreateFollowUp_Success(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	at := time.Now().UTC().Add(48 * time.Hour)

	f.followUpRepo.On("Save", mock.Anything, mock.AnythingOfType("model.FollowUp")).
		Return(&model.FollowUp{ID: 5, LeadID: 10, FollowUpAt: at}, nil)
	f.activityRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Activity")).Return(nil)
	f.publisher.On("FollowUpsChanged", mock.Anything, testOrgID).Return()

	followUp, err := f.service.CreateFollowUp(ctx, model.FollowUpPayload{
		LeadID:     10,
		FollowUpAt: at,
		Note:       "call back",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(5), followUp.ID)

	activity := f.activityRepo.Calls[0].Arguments.Get(1).(model.Activity)
	assert.Equal(t, model.ActivityFollowUpAdded, activity.ActivityType)
	f.publisher.AssertCalled(t, "FollowUpsChanged", mock.Anything, testOrgID)
}

func TestCreateFollowUp_PastDateRejected(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.service.CreateFollowUp(ownerCtx(), model.FollowUpPayload{
		LeadID:     10,
		FollowUpAt: time.Now().UTC().Add(-time.Hour),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.followUpRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateFollowUp_UnknownLead(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.followUpRepo.On("Save", mock.Anything, mock.AnythingOfType("model.FollowUp")).
		Return(nil, fmt.Errorf("%w: lead 99 not found", apperrors.ErrNotFound))

	_, err := f.service.CreateFollowUp(ctx, model.FollowUpPayload{
		LeadID:     99,
		FollowUpAt: time.Now().UTC().Add(time.Hour),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.publisher.AssertNotCalled(t, "FollowUpsChanged", mock.Anything, mock.Anything)
}

func TestCompleteFollowUp_WithSuccessor(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	next := time.Now().UTC().Add(72 * time.Hour)

	f.followUpRepo.On("FindByID", mock.Anything, uint(5)).
		Return(&model.FollowUp{ID: 5, LeadID: 10, IsCompleted: false}, nil)
	f.followUpRepo.On("Complete", mock.Anything,
		mock.AnythingOfType("model.FollowUp"), mock.AnythingOfType("*model.FollowUp")).Return(nil)
	f.activityRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Activity")).Return(nil)
	f.publisher.On("FollowUpsChanged", mock.Anything, testOrgID).Return()

	followUp, err := f.service.CompleteFollowUp(ctx, model.CompleteFollowUpPayload{
		FollowUpID:       5,
		Outcome:          "Meeting scheduled",
		NextFollowUp:     &next,
		NextFollowUpNote: "demo prep",
	})

	require.NoError(t, err)
	assert.True(t, followUp.IsCompleted)
	assert.Equal(t, "Meeting scheduled", followUp.Outcome)
	require.NotNil(t, followUp.CompletedAt)

	// Completion transaction carries the chained successor
	successor := f.followUpRepo.Calls[1].Arguments.Get(2).(*model.FollowUp)
	require.NotNil(t, successor)
	assert.Equal(t, uint(10), successor.LeadID)
	assert.Equal(t, next, successor.FollowUpAt)
	assert.Equal(t, "demo prep", successor.Note)

	// One timeline entry for the completion, one for the new follow-up
	assert.Len(t, f.activityRepo.Calls, 2)
	f.publisher.AssertNumberOfCalls(t, "FollowUpsChanged", 1)
}

func TestCompleteFollowUp_AlreadyDone(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	done := time.Now().UTC().Add(-time.Hour)
	f.followUpRepo.On("FindByID", mock.Anything, uint(5)).
		Return(&model.FollowUp{ID: 5, LeadID: 10, IsCompleted: true, CompletedAt: &done}, nil)

	_, err := f.service.CompleteFollowUp(ctx, model.CompleteFollowUpPayload{
		FollowUpID: 5,
		Outcome:    "Connected",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.followUpRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteFollowUp_UnknownOutcome(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.service.CompleteFollowUp(ownerCtx(), model.CompleteFollowUpPayload{
		FollowUpID: 5,
		Outcome:    "Maybe later",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.followUpRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestListFollowUps_StampsDerivedStatus(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	f.expectUTCOrg()

	now := time.Now().UTC()
	f.followUpRepo.On("List", mock.Anything,
		mock.AnythingOfType("model.FollowUpListFilter"), mock.Anything, mock.Anything).
		Return(&model.PagedFollowUps{
			FollowUps: []model.FollowUp{
				{ID: 1, FollowUpAt: now.Add(-48 * time.Hour)},
				{ID: 2, FollowUpAt: now},
				{ID: 3, FollowUpAt: now.Add(48 * time.Hour)},
				{ID: 4, FollowUpAt: now.Add(-48 * time.Hour), IsCompleted: true},
			},
			Total: 4,
		}, nil)

	page, err := f.service.ListFollowUps(ctx, model.FollowUpListFilter{})

	require.NoError(t, err)
	require.Len(t, page.FollowUps, 4)
	assert.Equal(t, model.FollowUpStatusOverdue, page.FollowUps[0].Status)
	assert.Equal(t, model.FollowUpStatusToday, page.FollowUps[1].Status)
	assert.Equal(t, model.FollowUpStatusUpcoming, page.FollowUps[2].Status)
	assert.Equal(t, model.FollowUpStatusDone, page.FollowUps[3].Status)
}

func TestFollowUpCounts_UsesOrgLocalDayBounds(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()
	f.expectUTCOrg()

	f.followUpRepo.On("Counts", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.FollowUpCounts{Overdue: 2, Today: 1, Upcoming: 4}, nil)

	counts, err := f.service.FollowUpCounts(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Overdue)

	dayStart := f.followUpRepo.Calls[0].Arguments.Get(1).(time.Time)
	dayEnd := f.followUpRepo.Calls[0].Arguments.Get(2).(time.Time)
	assert.Equal(t, dayStart.AddDate(0, 0, 1), dayEnd)
	assert.Equal(t, 0, dayStart.Hour())
}
