package storage

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

func TestPostgresRepo_SaveFollowUp_StampsLead(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	followUpAt := utils.Now().Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads" WHERE id = \$1 AND organization_id = \$2`).
		WithArgs(uint(11), testOrgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "follow_ups"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(`UPDATE "leads" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.SaveFollowUp(ctx, model.FollowUp{
		LeadID:     11,
		FollowUpAt: followUpAt,
		Note:       "intro call",
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(5), saved.ID)
	assert.Equal(t, testOrgID, saved.OrganizationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveFollowUp_UnknownLead(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads" WHERE id = \$1 AND organization_id = \$2`).
		WithArgs(uint(404), testOrgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.SaveFollowUp(ctx, model.FollowUp{LeadID: 404, FollowUpAt: utils.Now()})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CountFollowUps(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FILTER \(WHERE follow_up_at < \$1\) AS overdue`).
		WithArgs(dayStart, dayStart, dayEnd, dayEnd, testOrgID, false).
		WillReturnRows(sqlmock.NewRows([]string{"overdue", "today", "upcoming"}).AddRow(2, 1, 4))

	counts, err := repo.CountFollowUps(ctx, dayStart, dayEnd)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), counts.Overdue)
	assert.Equal(t, int64(1), counts.Today)
	assert.Equal(t, int64(4), counts.Upcoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CompleteFollowUp_WithSuccessor(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	now := utils.Now()
	nextAt := now.Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "follow_ups" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "follow_ups"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectQuery(`SELECT MIN\(follow_up_at\) FROM "follow_ups"`).
		WithArgs(uint(11), testOrgID, false).
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nextAt))
	mock.ExpectExec(`UPDATE "leads" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	completed := model.FollowUp{
		ID:          5,
		LeadID:      11,
		CompletedAt: &now,
		Outcome:     "Connected",
	}
	successor := &model.FollowUp{
		LeadID:     11,
		FollowUpAt: nextAt,
		Note:       "send proposal",
	}

	err := repo.CompleteFollowUp(ctx, completed, successor)

	assert.NoError(t, err)
	assert.Equal(t, uint(6), successor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CompleteFollowUp_AlreadyDone(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "follow_ups" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	now := utils.Now()
	err := repo.CompleteFollowUp(ctx, model.FollowUp{ID: 5, LeadID: 11, CompletedAt: &now, Outcome: "Other"}, nil)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListFollowUps_SearchJoinsLeads(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestSession()

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follow_ups" JOIN leads ON leads\.id = follow_ups\.lead_id`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .* FROM "follow_ups" JOIN leads ON leads\.id = follow_ups\.lead_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lead_id", "follow_up_at", "is_completed", "organization_id"}).
			AddRow(5, 11, dayStart.Add(10*time.Hour), false, testOrgID))
	mock.ExpectQuery(`SELECT .* FROM "leads" WHERE "leads"\."id" = \$1`).
		WithArgs(uint(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lead_name", "organization_id"}).
			AddRow(11, "Acme Corp", testOrgID))

	page, err := repo.ListFollowUps(ctx, model.FollowUpListFilter{Search: "Acme", Page: 1, PerPage: 10}, dayStart, dayEnd)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.FollowUps, 1)
	assert.NotNil(t, page.FollowUps[0].Lead)
	assert.Equal(t, "Acme Corp", page.FollowUps[0].Lead.LeadName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
