package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Resolution engine metrics
	Resolutions        *prometheus.CounterVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheEvictions     prometheus.Counter
	Evaluations        prometheus.Counter
	EvaluationFailures prometheus.Counter
	EvaluationDuration prometheus.Histogram

	// Store metrics
	StoreMutations  *prometheus.CounterVec
	ComponentsTotal *prometheus.GaugeVec

	// Copy engine metrics
	CopyOperations *prometheus.CounterVec
	CopiedTotal    prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a collector against a private registry,
// so tests can construct metrics repeatedly without panicking on
// duplicate registration.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "builder_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "builder_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "builder_widget_resolutions_total",
				Help: "Widget resolution attempts by outcome",
			},
			[]string{"outcome"},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_unit_cache_hits_total",
				Help: "Renderable unit cache hits",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_unit_cache_misses_total",
				Help: "Renderable unit cache misses",
			},
		),
		CacheEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_unit_cache_evictions_total",
				Help: "Renderable unit cache entries evicted",
			},
		),
		Evaluations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_script_evaluations_total",
				Help: "Sandboxed script evaluations",
			},
		),
		EvaluationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_script_evaluation_failures_total",
				Help: "Sandboxed script evaluations that failed",
			},
		),
		EvaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "builder_script_evaluation_duration_seconds",
				Help:    "Sandboxed script evaluation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),

		StoreMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "builder_store_mutations_total",
				Help: "Builder state store mutations by operation",
			},
			[]string{"operation"},
		),
		ComponentsTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "builder_components",
				Help: "Components currently placed, by canvas",
			},
			[]string{"canvas"},
		),

		CopyOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "builder_copy_operations_total",
				Help: "Cross-canvas copy operations by outcome",
			},
			[]string{"outcome"},
		),
		CopiedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "builder_copied_components_total",
				Help: "Components copied across canvases",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "builder_ws_connections",
				Help: "Active WebSocket event stream connections",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordResolution records a widget resolution outcome
func (m *Metrics) RecordResolution(outcome string) {
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// RecordEvaluation records a sandboxed evaluation
func (m *Metrics) RecordEvaluation(duration time.Duration, err error) {
	m.Evaluations.Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
	if err != nil {
		m.EvaluationFailures.Inc()
	}
}

// RecordMutation records a store mutation
func (m *Metrics) RecordMutation(operation string) {
	m.StoreMutations.WithLabelValues(operation).Inc()
}

// SetComponentCounts updates per-canvas component gauges
func (m *Metrics) SetComponentCounts(desktop, mobile int) {
	m.ComponentsTotal.WithLabelValues("desktop").Set(float64(desktop))
	m.ComponentsTotal.WithLabelValues("mobile").Set(float64(mobile))
}

// Uptime returns time since metrics creation
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
