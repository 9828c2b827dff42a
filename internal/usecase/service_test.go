package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	eventmock "github.com/campuskul/crm-console-api/internal/events/mock"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	storagemock "github.com/campuskul/crm-console-api/internal/storage/mock"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

// testFixture bundles the service with all of its mocked collaborators.
type testFixture struct {
	stageRepo    *storagemock.StageRepoMock
	leadRepo     *storagemock.LeadRepoMock
	followUpRepo *storagemock.FollowUpRepoMock
	userRepo     *storagemock.UserRepoMock
	activityRepo *storagemock.ActivityRepoMock
	orgRepo      *storagemock.OrganizationRepoMock
	publisher    *eventmock.PublisherMock
	issuer       *stubTokenIssuer
	service      *CrmService
}

// stubTokenIssuer hands back a fixed token.
type stubTokenIssuer struct {
	token string
	err   error
}

func (s *stubTokenIssuer) Issue(user *model.User) (string, time.Time, error) {
	return s.token, time.Now().Add(time.Hour), s.err
}

// inlineImporter runs row conversion synchronously, no pool.
type inlineImporter struct{}

func (inlineImporter) ProcessRows(_ context.Context, rows []ImportRow, ref ImportRef) ([]model.Lead, []model.ImportRowError) {
	var leads []model.Lead
	var rowErrors []model.ImportRowError
	for _, row := range rows {
		lead, rowErr := convertImportRow(row, ref)
		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		leads = append(leads, *lead)
	}
	return leads, rowErrors
}

func (inlineImporter) Close() {}

func newTestFixture(t *testing.T) *testFixture {
	logger.Log = zaptest.NewLogger(t).Named("usecase")
	f := &testFixture{
		stageRepo:    new(storagemock.StageRepoMock),
		leadRepo:     new(storagemock.LeadRepoMock),
		followUpRepo: new(storagemock.FollowUpRepoMock),
		userRepo:     new(storagemock.UserRepoMock),
		activityRepo: new(storagemock.ActivityRepoMock),
		orgRepo:      new(storagemock.OrganizationRepoMock),
		publisher:    new(eventmock.PublisherMock),
		issuer:       &stubTokenIssuer{token: "test-token"},
	}
	f.service = NewCrmService(
		f.stageRepo, f.leadRepo, f.followUpRepo, f.userRepo,
		f.activityRepo, f.orgRepo, f.publisher, inlineImporter{}, f.issuer,
	)
	return f
}

const (
	testOrgID   = uint(42)
	testOwnerID = uint(1)
)

func ownerCtx() context.Context {
	return session.WithSession(context.Background(), &session.Session{
		UserID:         testOwnerID,
		OrganizationID: testOrgID,
		Role:           session.RoleOwner,
		Name:           "Test Owner",
		Email:          "owner@example.com",
	})
}

func employeeCtx(userID uint) context.Context {
	return session.WithSession(context.Background(), &session.Session{
		UserID:         userID,
		OrganizationID: testOrgID,
		Role:           session.RoleEmployee,
		Name:           "Test Employee",
		Email:          "employee@example.com",
	})
}

// expectUTCOrg stubs the organization lookup used for timezone math.
func (f *testFixture) expectUTCOrg() {
	f.orgRepo.On("FindByID", mock.Anything, testOrgID).
		Return(&model.Organization{ID: testOrgID, Timezone: "UTC"}, nil)
}
