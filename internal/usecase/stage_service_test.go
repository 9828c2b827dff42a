package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
)

func TestCreateStage_AppendsWhenNoOrderGiven(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindAll", mock.Anything, "", "", 1, 0).
		Return([]model.Stage{}, int64(5), nil)
	f.stageRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Stage")).
		Return(&model.Stage{ID: 6, StageName: "Negotiation", StageOrder: 6}, nil)

	stage, err := f.service.CreateStage(ctx, model.StagePayload{StageName: "Negotiation"})

	require.NoError(t, err)
	assert.Equal(t, uint(6), stage.ID)

	saved := f.stageRepo.Calls[1].Arguments.Get(1).(model.Stage)
	assert.Equal(t, 6, saved.StageOrder)
	assert.Equal(t, model.StageStatusEnable, saved.StageStatus)
}

func TestCreateStage_ExplicitOrderKept(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("Save", mock.Anything, mock.AnythingOfType("model.Stage")).
		Return(&model.Stage{ID: 7, StageName: "Demo", StageOrder: 2}, nil)

	_, err := f.service.CreateStage(ctx, model.StagePayload{StageName: "Demo", StageOrder: 2})

	require.NoError(t, err)
	f.stageRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	saved := f.stageRepo.Calls[0].Arguments.Get(1).(model.Stage)
	assert.Equal(t, 2, saved.StageOrder)
}

func TestUpdateStage_RenameKeepsOrder(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindByID", mock.Anything, uint(3)).
		Return(&model.Stage{ID: 3, StageName: "Qualified", StageOrder: 3}, nil)
	f.stageRepo.On("Update", mock.Anything, mock.AnythingOfType("model.Stage")).Return(nil)

	stage, err := f.service.UpdateStage(ctx, 3, model.StagePayload{StageName: "Vetted"})

	require.NoError(t, err)
	assert.Equal(t, "Vetted", stage.StageName)
	assert.Equal(t, 3, stage.StageOrder)
}

func TestReorderStages_EmptyBatchRejected(t *testing.T) {
	f := newTestFixture(t)

	err := f.service.ReorderStages(ownerCtx(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	f.stageRepo.AssertNotCalled(t, "Reorder", mock.Anything, mock.Anything)
}

func TestReorderStages_InvalidOrderRejected(t *testing.T) {
	f := newTestFixture(t)

	err := f.service.ReorderStages(ownerCtx(), []model.StageOrderUpdate{
		{ID: 1, Order: 2},
		{ID: 2, Order: -1},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.stageRepo.AssertNotCalled(t, "Reorder", mock.Anything, mock.Anything)
}

func TestReorderStages_Success(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	updates := []model.StageOrderUpdate{{ID: 1, Order: 2}, {ID: 2, Order: 1}}
	f.stageRepo.On("Reorder", mock.Anything, updates).Return(nil)

	require.NoError(t, f.service.ReorderStages(ctx, updates))
	f.stageRepo.AssertCalled(t, "Reorder", mock.Anything, updates)
}

func TestToggleStage_ReturnsFlippedStatus(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("ToggleStatus", mock.Anything, uint(4)).
		Return(&model.Stage{ID: 4, StageStatus: model.StageStatusDisable}, nil)

	stage, err := f.service.ToggleStage(ctx, 4)

	require.NoError(t, err)
	assert.Equal(t, model.StageStatusDisable, stage.StageStatus)
}
