package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus collectors exposed on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	cycleDurationSeconds prometheus.Histogram
	servicesTotal        *prometheus.GaugeVec
	resolutionsTotal     *prometheus.CounterVec
	sourceFailuresTotal  *prometheus.CounterVec
	cacheErrorsTotal     *prometheus.CounterVec
	lastCycleGauge       prometheus.Gauge
}

// New initializes a dedicated registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		cycleDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statuswall_cycle_duration_seconds",
			Help:    "Duration of resolution cycles in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		servicesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "statuswall_services_total",
			Help: "Services by resolved status in the latest cycle.",
		}, []string{"status"}),
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuswall_resolutions_total",
			Help: "Resolutions by the step that produced the status.",
		}, []string{"via"}),
		sourceFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuswall_source_failures_total",
			Help: "Failed source lookups by source kind.",
		}, []string{"source"}),
		cacheErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuswall_cache_errors_total",
			Help: "Status cache errors by operation.",
		}, []string{"op"}),
		lastCycleGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statuswall_last_cycle_timestamp",
			Help: "Unix timestamp of the last completed cycle.",
		}),
	}

	registry.MustRegister(
		m.cycleDurationSeconds,
		m.servicesTotal,
		m.resolutionsTotal,
		m.sourceFailuresTotal,
		m.cacheErrorsTotal,
		m.lastCycleGauge,
	)

	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCycleDuration records the duration of a completed cycle.
func (m *Metrics) ObserveCycleDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.cycleDurationSeconds.Observe(duration.Seconds())
}

// SetServicesTotal sets the services gauge for the given status.
func (m *Metrics) SetServicesTotal(status string, value int) {
	if m == nil {
		return
	}
	m.servicesTotal.WithLabelValues(status).Set(float64(value))
}

// IncResolutions counts one resolution produced by the given step.
func (m *Metrics) IncResolutions(via string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(via).Inc()
}

// IncSourceFailures counts a failed lookup on "api" or "html".
func (m *Metrics) IncSourceFailures(source string) {
	if m == nil {
		return
	}
	m.sourceFailuresTotal.WithLabelValues(source).Inc()
}

// IncCacheErrors counts a failed cache "get" or "put".
func (m *Metrics) IncCacheErrors(op string) {
	if m == nil {
		return
	}
	m.cacheErrorsTotal.WithLabelValues(op).Inc()
}

// SetLastCycleTimestamp records when the latest cycle completed.
func (m *Metrics) SetLastCycleTimestamp(ts time.Time) {
	if m == nil {
		return
	}
	m.lastCycleGauge.Set(float64(ts.Unix()))
}
