package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsByState    *prometheus.GaugeVec
	SessionInits       *prometheus.CounterVec
	ReconnectAttempts  prometheus.Counter
	ReconnectExhausted prometheus.Counter

	// Action metrics
	ActionsTotal *prometheus.CounterVec

	// Tenant metrics
	TenantValidations *prometheus.CounterVec
	TenantFlushes     *prometheus.CounterVec
}

var globalMetrics *Metrics

// NewMetrics creates and registers Prometheus metrics. Registration with
// the default registerer happens once per process; later calls return the
// same instance.
func NewMetrics() *Metrics {
	if globalMetrics != nil {
		return globalMetrics
	}

	globalMetrics = &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),

		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of HTTP request processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		SessionsByState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_sessions",
				Help: "Number of live sessions by lifecycle state",
			},
			[]string{"state"},
		),

		SessionInits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_session_inits_total",
				Help: "Total number of session initialization attempts",
			},
			[]string{"outcome"},
		),

		ReconnectAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_reconnect_attempts_total",
				Help: "Total number of scheduled reconnection attempts",
			},
		),

		ReconnectExhausted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_reconnect_exhausted_total",
				Help: "Total number of sessions that hit the reconnect ceiling",
			},
		),

		ActionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_actions_total",
				Help: "Total number of protocol actions executed",
			},
			[]string{"action", "outcome"},
		),

		TenantValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_tenant_validations_total",
				Help: "Total number of tenant token validations",
			},
			[]string{"outcome"},
		),

		TenantFlushes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_tenant_flushes_total",
				Help: "Total number of tenant store persistence flushes",
			},
			[]string{"kind"},
		),
	}

	return globalMetrics
}

// RecordHTTPRequest records the counter and duration metrics for one
// completed HTTP request. Safe on a nil receiver so handlers built
// without metrics in tests skip recording.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
