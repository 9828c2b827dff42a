package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
)

func TestPostgresRepo_SaveStage(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectQuery(`INSERT INTO "stages"`).
		WithArgs("Negotiation", 6, model.StageStatusEnable, testOrgID, AnyTime{}, AnyTime{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	saved, err := repo.SaveStage(ctx, model.Stage{
		StageName:   "Negotiation",
		StageOrder:  6,
		StageStatus: model.StageStatusEnable,
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(7), saved.ID)
	assert.Equal(t, testOrgID, saved.OrganizationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveStage_DuplicateName(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectQuery(`INSERT INTO "stages"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_stages_org_name"})

	_, err := repo.SaveStage(ctx, model.Stage{StageName: "New", StageStatus: model.StageStatusEnable})

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveStage_NoSession(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.SaveStage(context.Background(), model.Stage{StageName: "New"})

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestPostgresRepo_FindActiveStages(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	rows := sqlmock.NewRows([]string{"id", "stage_name", "stage_order", "stage_status", "organization_id"}).
		AddRow(1, "New", 1, model.StageStatusEnable, testOrgID).
		AddRow(2, "Contacted", 2, model.StageStatusEnable, testOrgID)

	mock.ExpectQuery(`SELECT .* FROM "stages" WHERE organization_id = \$1 AND stage_status = \$2 ORDER BY stage_order ASC`).
		WithArgs(testOrgID, model.StageStatusEnable).
		WillReturnRows(rows)

	stages, err := repo.FindActiveStages(ctx)

	assert.NoError(t, err)
	assert.Len(t, stages, 2)
	assert.Equal(t, "New", stages[0].StageName)
	assert.Equal(t, "Contacted", stages[1].StageName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateStage_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStage(ctx, model.Stage{ID: 99, StageName: "Renamed", StageOrder: 1})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ReorderStages(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReorderStages(ctx, []model.StageOrderUpdate{
		{ID: 2, Order: 1},
		{ID: 1, Order: 2},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ReorderStages_UnknownStageRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReorderStages(ctx, []model.StageOrderUpdate{
		{ID: 1, Order: 1},
		{ID: 99, Order: 2},
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ToggleStageStatus(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "stages" WHERE id = \$1 AND organization_id = \$2`).
		WithArgs(uint(3), testOrgID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stage_name", "stage_status", "organization_id"}).
			AddRow(3, "Qualified", model.StageStatusEnable, testOrgID))
	mock.ExpectExec(`UPDATE "stages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	stage, err := repo.ToggleStageStatus(ctx, 3)

	assert.NoError(t, err)
	assert.Equal(t, model.StageStatusDisable, stage.StageStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteStage_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectExec(`DELETE FROM "stages"`).
		WithArgs(uint(77), testOrgID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteStage(ctx, 77)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
