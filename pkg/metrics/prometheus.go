// Package metrics provides Prometheus metrics for the CDSS risk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Clinical pipeline metrics
	assessmentsTotal *prometheus.CounterVec
	assessmentErrors prometheus.Counter
	scoreLatency     prometheus.Histogram
	explainFailures  prometheus.Counter
	modelLoaded      prometheus.Gauge

	// Case logging metrics
	caseAppends      prometheus.Counter
	caseAppendErrors prometheus.Counter

	// Recent-case store metrics
	recentCases prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cdss",
		subsystem:        "risk",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessmentsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessments_total",
			Help:      "Total number of completed risk assessments by tier",
		},
		[]string{"tier"},
	)

	m.assessmentErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessment_errors_total",
		Help:      "Total number of assessments that failed before producing a probability",
	})

	m.scoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_score_latency_milliseconds",
		Help:      "Histogram of model scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.explainFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "explain_failures_total",
		Help:      "Total number of attribution computations that failed",
	})

	m.modelLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loaded",
		Help:      "Whether the risk model artifact is loaded (1) or absent (0)",
	})

	m.caseAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "case_appends_total",
		Help:      "Total number of case rows appended to the research log",
	})

	m.caseAppendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "case_append_errors_total",
		Help:      "Total number of failed case row appends",
	})

	m.recentCases = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recent_cases",
		Help:      "Number of assessments held in the recent-case store",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordAssessment increments the assessment counter for a tier.
func RecordAssessment(tier string) {
	globalManager.assessmentsTotal.WithLabelValues(tier).Inc()
}

// RecordAssessmentError increments the failed-assessment counter.
func RecordAssessmentError() {
	globalManager.assessmentErrors.Inc()
}

// RecordScoreLatency observes a model scoring latency in milliseconds.
func RecordScoreLatency(latencyMs float64) {
	globalManager.scoreLatency.Observe(latencyMs)
}

// RecordExplainFailure increments the attribution failure counter.
func RecordExplainFailure() {
	globalManager.explainFailures.Inc()
}

// SetModelLoaded records whether the model artifact is available.
func SetModelLoaded(loaded bool) {
	if loaded {
		globalManager.modelLoaded.Set(1)
		return
	}
	globalManager.modelLoaded.Set(0)
}

// RecordCaseAppend increments the case append counter; failed appends also
// increment the error counter.
func RecordCaseAppend(ok bool) {
	globalManager.caseAppends.Inc()
	if !ok {
		globalManager.caseAppendErrors.Inc()
	}
}

// UpdateRecentCases records the recent-case store size.
func UpdateRecentCases(count int) {
	globalManager.recentCases.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
