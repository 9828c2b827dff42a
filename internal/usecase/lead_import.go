package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/config"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// importColumns are the accepted CSV header names. lead_name and
// phone_number are required per row; everything else falls back to a
// default.
var importColumns = []string{
	"lead_name", "phone_number", "email", "company_name", "lead_source",
	"status", "assigned_owner_email", "expected_deal_value", "priority", "note",
}

// importTask is one row handed to the worker pool.
type importTask struct {
	row    ImportRow
	ref    ImportRef
	result *importResult
	wg     *sync.WaitGroup
}

// importResult collects a worker's output for one row.
type importResult struct {
	lead   *model.Lead
	rowErr *model.ImportRowError
}

// LeadImporter validates import rows on an ants worker pool.
type LeadImporter struct {
	pool       *ants.PoolWithFunc
	baseLogger *zap.Logger
}

// Ensure LeadImporter implements ILeadImporter
var _ ILeadImporter = (*LeadImporter)(nil)

// NewLeadImporter creates and initializes the import worker pool.
func NewLeadImporter(cfg config.ImportWorkerPoolConfig, baseLogger *zap.Logger) (*LeadImporter, error) {
	importer := &LeadImporter{
		baseLogger: baseLogger.Named("lead_importer"),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		task, ok := i.(*importTask)
		if !ok {
			importer.baseLogger.Error("Invalid task data type received", zap.Any("data", i))
			return
		}
		observer.IncImportWorkersActive(1)
		defer observer.IncImportWorkersActive(-1)
		defer task.wg.Done()
		task.result.lead, task.result.rowErr = convertImportRow(task.row, task.ref)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(err interface{}) {
			importer.baseLogger.Error("Panic recovered in import worker",
				zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import worker pool: %w", err)
	}
	importer.pool = pool
	importer.baseLogger.Info("Lead import worker pool initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Duration("expiry_time", cfg.ExpiryTime),
	)
	return importer, nil
}

// ProcessRows fans the rows across the pool and gathers per-row outcomes.
// Order of returned leads follows row order.
func (li *LeadImporter) ProcessRows(ctx context.Context, rows []ImportRow, ref ImportRef) ([]model.Lead, []model.ImportRowError) {
	results := make([]importResult, len(rows))
	var wg sync.WaitGroup

	for i := range rows {
		wg.Add(1)
		task := &importTask{row: rows[i], ref: ref, result: &results[i], wg: &wg}
		if err := li.pool.Invoke(task); err != nil {
			// Pool overload or released pool: fall back to inline processing
			li.baseLogger.Warn("Import pool rejected task, processing inline", zap.Error(err))
			results[i].lead, results[i].rowErr = convertImportRow(rows[i], ref)
			wg.Done()
		}
	}
	wg.Wait()

	var leads []model.Lead
	var rowErrors []model.ImportRowError
	for i := range results {
		if results[i].rowErr != nil {
			rowErrors = append(rowErrors, *results[i].rowErr)
			continue
		}
		if results[i].lead != nil {
			leads = append(leads, *results[i].lead)
		}
	}
	sort.Slice(rowErrors, func(i, j int) bool { return rowErrors[i].Row < rowErrors[j].Row })
	return leads, rowErrors
}

// Close releases the worker pool.
func (li *LeadImporter) Close() {
	li.pool.Release()
}

// convertImportRow validates one CSV row against the reference data and
// builds the lead it describes.
func convertImportRow(row ImportRow, ref ImportRef) (*model.Lead, *model.ImportRowError) {
	var rowErrors []string

	get := func(column string) string {
		return strings.TrimSpace(row.Record[column])
	}

	if reason := row.Record["_malformed"]; reason != "" {
		return nil, &model.ImportRowError{Row: row.Number, Errors: []string{"malformed CSV row: " + reason}}
	}

	leadName := get("lead_name")
	if leadName == "" {
		rowErrors = append(rowErrors, "lead_name is required")
	}
	phone := get("phone_number")
	if phone == "" {
		rowErrors = append(rowErrors, "phone_number is required")
	}

	status := get("status")
	if status == "" {
		status = ref.DefaultStatus
	} else if _, ok := ref.StageNames[status]; !ok {
		rowErrors = append(rowErrors, fmt.Sprintf("unknown pipeline stage %q", status))
	}

	assignedOwnerID := ref.DefaultOwnerID
	if email := get("assigned_owner_email"); email != "" {
		id, ok := ref.OwnersByEmail[strings.ToLower(email)]
		if !ok {
			rowErrors = append(rowErrors, fmt.Sprintf("no active user with email %q", email))
		} else {
			assignedOwnerID = id
		}
	}

	leadSource := get("lead_source")
	if leadSource != "" && !containsString(model.LeadSources, leadSource) {
		rowErrors = append(rowErrors, fmt.Sprintf("invalid lead_source %q", leadSource))
	}

	var priority *string
	if p := get("priority"); p != "" {
		if !containsString(model.LeadPriorities, p) {
			rowErrors = append(rowErrors, fmt.Sprintf("invalid priority %q", p))
		} else {
			priority = &p
		}
	}

	var dealValue *float64
	if raw := get("expected_deal_value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("invalid expected_deal_value %q", raw))
		} else {
			dealValue = &v
		}
	}

	if len(rowErrors) > 0 {
		return nil, &model.ImportRowError{Row: row.Number, Errors: rowErrors}
	}

	return &model.Lead{
		LeadName:          leadName,
		PhoneNumber:       phone,
		Email:             get("email"),
		CompanyName:       get("company_name"),
		LeadSource:        leadSource,
		Status:            status,
		AssignedOwnerID:   assignedOwnerID,
		ExpectedDealValue: dealValue,
		Priority:          priority,
		Note:              get("note"),
	}, nil
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// parseImportCSV reads the upload into header-keyed rows. Row numbers are
// 1-based over data rows; the header row is row zero and never reported.
func parseImportCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %w", apperrors.ErrBadRequest, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	known := map[string]struct{}{}
	for _, column := range importColumns {
		known[column] = struct{}{}
	}
	hasKnown := false
	for _, column := range header {
		if _, ok := known[column]; ok {
			hasKnown = true
			break
		}
	}
	if !hasKnown {
		return nil, fmt.Errorf("%w: CSV header has no recognized columns", apperrors.ErrBadRequest)
	}

	var rows []ImportRow
	number := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		number++
		if err != nil {
			// Malformed CSV line, reported like a validation failure
			rows = append(rows, ImportRow{Number: number, Record: map[string]string{
				"_malformed": err.Error(),
			}})
			continue
		}
		fields := map[string]string{}
		for i, column := range header {
			if i < len(record) {
				fields[column] = record[i]
			}
		}
		rows = append(rows, ImportRow{Number: number, Record: fields})
	}
	return rows, nil
}

// ImportLeads parses the CSV upload, validates rows concurrently and bulk
// inserts the valid ones. Partial failure is a successful outcome: the
// summary itemizes rejected rows while the rest are stored.
func (s *CrmService) ImportLeads(ctx context.Context, upload io.Reader) (*model.ImportSummary, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	start := utils.Now()

	rows, err := parseImportCSV(upload)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: CSV contains no data rows", apperrors.ErrBadRequest)
	}

	stages, err := s.stageRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline stages: %w", err)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: organization has no enabled pipeline stages", apperrors.ErrConflict)
	}
	ref := ImportRef{
		StageNames:     map[string]struct{}{},
		OwnersByEmail:  map[string]uint{},
		DefaultStatus:  stages[0].StageName,
		DefaultOwnerID: sess.UserID,
	}
	for _, stage := range stages {
		ref.StageNames[stage.StageName] = struct{}{}
	}
	employees, err := s.userRepo.FindActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	for _, employee := range employees {
		ref.OwnersByEmail[strings.ToLower(employee.Email)] = employee.ID
	}
	ref.OwnersByEmail[strings.ToLower(sess.Email)] = sess.UserID

	leads, rowErrors := s.importer.ProcessRows(ctx, rows, ref)

	if len(leads) > 0 {
		if err := s.leadRepo.BulkInsert(ctx, leads); err != nil {
			return nil, fmt.Errorf("failed to store imported leads: %w", err)
		}
	}

	for range leads {
		observer.IncImportRow(sess.OrganizationID, true)
	}
	for range rowErrors {
		observer.IncImportRow(sess.OrganizationID, false)
	}
	observer.ObserveImportDuration(sess.OrganizationID, time.Since(start))

	summary := &model.ImportSummary{
		Success: len(leads),
		Failed:  len(rowErrors),
		Errors:  rowErrors,
	}
	if summary.Errors == nil {
		summary.Errors = []model.ImportRowError{}
	}

	logger.FromContext(ctx).Info("Lead import finished",
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed))
	return summary, nil
}
