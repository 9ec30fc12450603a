package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric namespace
const metricsNamespace = "igfeed"

// Sync outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
)

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	syncTotal           *prometheus.CounterVec
	syncDuration        prometheus.Histogram
	syncMediaItems      prometheus.Histogram
	providerRequests    *prometheus.CounterVec
	trackingEvents      *prometheus.CounterVec
	tokenRefreshTotal   *prometheus.CounterVec
	connectTotal        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	schedulerQueueDepth prometheus.Gauge
}

// NewMetrics registers all collectors on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sync_total",
			Help:      "Feed sync runs by outcome.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of feed sync runs including lock wait.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		syncMediaItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sync_media_items",
			Help:      "Number of items published per sync.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_requests_total",
			Help:      "Outbound provider API requests by operation and result.",
		}, []string{"operation", "result"}),
		trackingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tracking_events_total",
			Help:      "Accepted storefront tracking events by type.",
		}, []string{"type"}),
		tokenRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_refresh_total",
			Help:      "Long-lived credential refresh attempts by result.",
		}, []string{"result"}),
		connectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connect_total",
			Help:      "Completed account handshakes by outcome.",
		}, []string{"outcome"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		schedulerQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "scheduler_queue_depth",
			Help:      "Sync jobs waiting in the worker pool queue.",
		}),
	}

	registry.MustRegister(
		m.syncTotal,
		m.syncDuration,
		m.syncMediaItems,
		m.providerRequests,
		m.trackingEvents,
		m.tokenRefreshTotal,
		m.connectTotal,
		m.httpRequestDuration,
		m.schedulerQueueDepth,
	)
	return m
}

// Handler returns the /metrics scrape handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (for tests)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSync records one sync run
func (m *Metrics) ObserveSync(outcome string, d time.Duration, items int) {
	if m == nil {
		return
	}
	m.syncTotal.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess || outcome == OutcomeDegraded {
		m.syncMediaItems.Observe(float64(items))
	}
}

// ProviderRequest records one outbound provider call
func (m *Metrics) ProviderRequest(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.providerRequests.WithLabelValues(operation, result).Inc()
}

// TrackingEvent records one accepted tracking event
func (m *Metrics) TrackingEvent(eventType string) {
	if m == nil {
		return
	}
	m.trackingEvents.WithLabelValues(eventType).Inc()
}

// TokenRefresh records one credential refresh attempt
func (m *Metrics) TokenRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tokenRefreshTotal.WithLabelValues(result).Inc()
}

// Connect records one completed handshake
func (m *Metrics) Connect(outcome string) {
	if m == nil {
		return
	}
	m.connectTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// SetQueueDepth reports the scheduler queue length
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.schedulerQueueDepth.Set(float64(n))
}
