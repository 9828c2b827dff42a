package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/config"
	"github.com/campuskul/crm-console-api/internal/model"
)

func testImportRef() ImportRef {
	return ImportRef{
		StageNames:     map[string]struct{}{"New": {}, "Contacted": {}},
		OwnersByEmail:  map[string]uint{"rep@example.com": 3},
		DefaultStatus:  "New",
		DefaultOwnerID: testOwnerID,
	}
}

func TestConvertImportRow_Valid(t *testing.T) {
	row := ImportRow{Number: 1, Record: map[string]string{
		"lead_name":            "Acme Corp",
		"phone_number":         "+6281234567890",
		"email":                "buyer@acme.test",
		"lead_source":          "Website",
		"status":               "Contacted",
		"assigned_owner_email": "rep@example.com",
		"expected_deal_value":  "2500.50",
		"priority":             "High",
	}}

	lead, rowErr := convertImportRow(row, testImportRef())

	require.Nil(t, rowErr)
	assert.Equal(t, "Acme Corp", lead.LeadName)
	assert.Equal(t, "Contacted", lead.Status)
	assert.Equal(t, uint(3), lead.AssignedOwnerID)
	require.NotNil(t, lead.ExpectedDealValue)
	assert.Equal(t, 2500.50, *lead.ExpectedDealValue)
	require.NotNil(t, lead.Priority)
	assert.Equal(t, "High", *lead.Priority)
}

func TestConvertImportRow_Defaults(t *testing.T) {
	row := ImportRow{Number: 2, Record: map[string]string{
		"lead_name":    "Minimal Lead",
		"phone_number": "+628000000001",
	}}

	lead, rowErr := convertImportRow(row, testImportRef())

	require.Nil(t, rowErr)
	assert.Equal(t, "New", lead.Status)
	assert.Equal(t, testOwnerID, lead.AssignedOwnerID)
	assert.Nil(t, lead.ExpectedDealValue)
	assert.Nil(t, lead.Priority)
}

func TestConvertImportRow_CollectsAllViolations(t *testing.T) {
	row := ImportRow{Number: 3, Record: map[string]string{
		"lead_name":           "",
		"phone_number":        "",
		"status":              "Ghost",
		"lead_source":         "Telegram",
		"priority":            "Urgent",
		"expected_deal_value": "lots",
	}}

	lead, rowErr := convertImportRow(row, testImportRef())

	assert.Nil(t, lead)
	require.NotNil(t, rowErr)
	assert.Equal(t, 3, rowErr.Row)
	assert.Len(t, rowErr.Errors, 6)
}

func TestLeadImporter_ProcessRowsOnPool(t *testing.T) {
	importer, err := NewLeadImporter(config.ImportWorkerPoolConfig{
		PoolSize:   4,
		QueueSize:  100,
		ExpiryTime: time.Minute,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer importer.Close()

	rows := make([]ImportRow, 0, 50)
	for i := 1; i <= 50; i++ {
		record := map[string]string{
			"lead_name":    gofakeit.Company(),
			"phone_number": gofakeit.Phone(),
		}
		if i%10 == 0 {
			// Every tenth row is broken
			record["phone_number"] = ""
		}
		rows = append(rows, ImportRow{Number: i, Record: record})
	}

	leads, rowErrors := importer.ProcessRows(ownerCtx(), rows, testImportRef())

	assert.Len(t, leads, 45)
	require.Len(t, rowErrors, 5)
	// Row errors come back ordered regardless of worker scheduling
	assert.Equal(t, 10, rowErrors[0].Row)
	assert.Equal(t, 50, rowErrors[4].Row)
}

func TestImportLeads_PartialSuccess(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New", "Contacted"), nil)
	f.userRepo.On("FindActiveEmployees", mock.Anything).
		Return([]model.User{{ID: 3, Email: "Rep@Example.com"}}, nil)
	f.leadRepo.On("BulkInsert", mock.Anything, mock.AnythingOfType("[]model.Lead")).Return(nil)

	csv := strings.Join([]string{
		"lead_name,phone_number,status,assigned_owner_email",
		"Acme Corp,+62811111111,New,rep@example.com",
		"Beta LLC,+62822222222,,",
		",missing-name,New,",
		"Gamma Inc,+62833333333,Ghost,",
		"Delta Co,+62844444444,Contacted,",
	}, "\n")

	summary, err := f.service.ImportLeads(ctx, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Success)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, 3, summary.Errors[0].Row)
	assert.Equal(t, 4, summary.Errors[1].Row)

	inserted := f.leadRepo.Calls[0].Arguments.Get(1).([]model.Lead)
	require.Len(t, inserted, 3)
	// Owner email matching is case insensitive
	assert.Equal(t, uint(3), inserted[0].AssignedOwnerID)
	// Blank status falls back to the first enabled stage
	assert.Equal(t, "New", inserted[1].Status)
}

func TestImportLeads_EmptyFileRejected(t *testing.T) {
	f := newTestFixture(t)
	ctx := ownerCtx()

	f.stageRepo.On("FindActive", mock.Anything).Return(activeStages("New"), nil)

	_, err := f.service.ImportLeads(ctx, strings.NewReader("lead_name,phone_number\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	f.leadRepo.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
}

func TestImportLeads_UnrecognizedHeaderRejected(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.service.ImportLeads(ownerCtx(), strings.NewReader("foo,bar\n1,2\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
