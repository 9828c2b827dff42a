package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
)

func testUser() *model.User {
	return &model.User{
		ID:             7,
		Name:           "Ana Owner",
		Email:          "ana@example.com",
		Role:           session.RoleOwner,
		OrganizationID: 42,
	}
}

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	sess, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), sess.UserID)
	assert.Equal(t, uint(42), sess.OrganizationID)
	assert.Equal(t, session.RoleOwner, sess.Role)
	assert.Equal(t, "ana@example.com", sess.Email)
}

func TestManager_ParseRejectsWrongSecret(t *testing.T) {
	issued, _, err := NewManager("secret-a", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(issued)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestManager_ParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestManager_ParseRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestManager_ParseRejectsUnknownRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	user := testUser()
	user.Role = "superadmin"
	token, _, err := m.Issue(user)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
