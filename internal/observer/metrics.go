package observer

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = false // Flag to control metric collection
)

// --- HTTP Metrics ---
var (
	httpLabels = []string{"method", "route", "status"}

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_console_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		httpLabels,
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_console_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		httpLabels,
	)
)

// --- Database Metrics ---
var (
	dbOperationLabels = []string{"operation", "entity", "organization_id", "status"}

	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_console_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		dbOperationLabels,
	)
)

// --- Event Publishing Metrics ---
var (
	eventLabels = []string{"subject", "status"}

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_console_events_published_total",
			Help: "Total number of domain events published to NATS.",
		},
		eventLabels,
	)
)

// --- Lead Import Worker Pool Metrics ---
var (
	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_console_import_rows_total",
			Help: "Total number of lead import rows processed, by outcome.",
		},
		[]string{"organization_id", "status"},
	)

	importDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_console_import_duration_seconds",
			Help:    "Histogram of whole-file lead import durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"organization_id"},
	)

	importWorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crm_console_import_workers_active",
		Help: "Number of import worker goroutines currently busy.",
	})
)

// InitMetrics toggles metric collection. Collectors are registered via
// promauto regardless; the flag only gates the observation helpers.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// orgLabel formats an organization ID for use as a metric label.
func orgLabel(organizationID uint) string {
	if organizationID == 0 {
		return "unknown"
	}
	return strconv.FormatUint(uint64(organizationID), 10)
}

// RecordHTTPRequest increments the request counter and observes duration.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	status := strconv.Itoa(statusCode)
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveDbOperationDuration observes the duration of a database operation.
func ObserveDbOperationDuration(operation, entity string, organizationID uint, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, orgLabel(organizationID), status).Observe(duration.Seconds())
}

// IncEventPublished increments the published-event counter.
func IncEventPublished(subject string, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	EventsPublishedTotal.WithLabelValues(subject, status).Inc()
}

// IncImportRow counts one processed import row by outcome.
func IncImportRow(organizationID uint, ok bool) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if !ok {
		status = "failed"
	}
	importRowsTotal.WithLabelValues(orgLabel(organizationID), status).Inc()
}

// ObserveImportDuration observes the duration of a whole import request.
func ObserveImportDuration(organizationID uint, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	importDurationSeconds.WithLabelValues(orgLabel(organizationID)).Observe(duration.Seconds())
}

// IncImportWorkersActive adjusts the active import worker gauge.
func IncImportWorkersActive(delta float64) {
	if !metricsEnabled {
		return
	}
	importWorkersActive.Add(delta)
}
