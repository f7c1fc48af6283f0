// Package metrics provides Prometheus metrics for the pagewatch dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Inbound HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream monitor API
	upstreamRequests        *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
	upstreamErrors          *prometheus.CounterVec

	// Rendering
	renders *prometheus.CounterVec

	// List loader
	listLoadsStarted    prometheus.Counter
	listLoadsCollapsed  prometheus.Counter
	listLoadsSuperseded prometheus.Counter

	// Forms
	validationFailures   *prometheus.CounterVec
	checkSubmissions     *prometheus.CounterVec
	duplicateSubmissions prometheus.Counter
	trackedSubmissions   prometheus.Gauge

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pagewatch",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests served by route, method and status",
		ConstLabels: m.constLabels,
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"route", "method", "status_code"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Total number of monitor API calls by operation and status",
		ConstLabels: m.constLabels,
	}, []string{"operation", "status_code"})

	m.upstreamRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_request_duration_milliseconds",
		Help:        "Monitor API call latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.upstreamErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_errors_total",
		Help:        "Monitor API failures by operation and error type (transport, decode, api)",
		ConstLabels: m.constLabels,
	}, []string{"operation", "error_type"})

	m.renders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "renders_total",
		Help:        "Template render passes by view",
		ConstLabels: m.constLabels,
	}, []string{"view"})

	m.listLoadsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "list_loads_started_total",
		Help:        "Check list loads that issued an upstream fetch",
		ConstLabels: m.constLabels,
	})

	m.listLoadsCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "list_loads_collapsed_total",
		Help:        "Check list loads that joined an in-flight load",
		ConstLabels: m.constLabels,
	})

	m.listLoadsSuperseded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "list_loads_superseded_total",
		Help:        "Check list loads cancelled by a newer load",
		ConstLabels: m.constLabels,
	})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "form_validation_failures_total",
		Help:        "New-check form submissions rejected before any upstream call, by field",
		ConstLabels: m.constLabels,
	}, []string{"field"})

	m.checkSubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "check_submissions_total",
		Help:        "New-check submissions sent upstream by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.duplicateSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_submissions_total",
		Help:        "Form posts dropped because their submission token was already used",
		ConstLabels: m.constLabels,
	})

	m.trackedSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tracked_submission_tokens",
		Help:        "Submission tokens currently remembered for duplicate detection",
		ConstLabels: m.constLabels,
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Total number of errors by component",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Total number of error responses by route",
		ConstLabels: m.constLabels,
	}, []string{"route", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(route, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(route, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}

// RecordUpstreamRequest records one monitor API call.
func RecordUpstreamRequest(operation, statusCode string, durationMs float64) {
	globalManager.upstreamRequests.WithLabelValues(operation, statusCode).Inc()
	globalManager.upstreamRequestDuration.WithLabelValues(operation).Observe(durationMs)
}

// RecordUpstreamError records a failed monitor API call.
func RecordUpstreamError(operation, errorType string) {
	globalManager.upstreamErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordRender increments the render counter for view.
func RecordRender(view string) {
	globalManager.renders.WithLabelValues(view).Inc()
}

// RecordListLoadStarted counts a list load that went upstream.
func RecordListLoadStarted() {
	globalManager.listLoadsStarted.Inc()
}

// RecordListLoadCollapsed counts a list load that joined an in-flight one.
func RecordListLoadCollapsed() {
	globalManager.listLoadsCollapsed.Inc()
}

// RecordListLoadSuperseded counts a list load cancelled by a newer one.
func RecordListLoadSuperseded() {
	globalManager.listLoadsSuperseded.Inc()
}

// RecordValidationFailure counts a rejected form by offending field.
func RecordValidationFailure(field string) {
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// RecordCheckSubmission counts a submission sent upstream ("created", "rejected", "failed").
func RecordCheckSubmission(outcome string) {
	globalManager.checkSubmissions.WithLabelValues(outcome).Inc()
}

// RecordDuplicateSubmission counts a replayed submission token.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmissions.Inc()
}

// UpdateTrackedSubmissions sets the number of remembered submission tokens.
func UpdateTrackedSubmissions(count int64) {
	globalManager.trackedSubmissions.Set(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error response with route, method and type labels.
func RecordErrorByEndpoint(route, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(route, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
