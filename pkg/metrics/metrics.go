package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes used as the "outcome" label
const (
	OutcomeMatched           = "matched"
	OutcomeDefault           = "default"
	OutcomeNotFound          = "not_found"
	OutcomeContractViolation = "contract_violation"
)

// Metrics holds all Prometheus metrics for a bogus server
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ResponseSize       *prometheus.HistogramVec
	RegisteredHandlers *prometheus.GaugeVec
	CallLogSize        prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance with a custom registry.
// Tests that start several servers should give each one its own registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bogus_http_requests_total",
				Help: "Total number of requests dispatched",
			},
			[]string{"method", "path", "outcome", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bogus_http_request_duration_seconds",
				Help:    "Time spent dispatching a request, handler included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bogus_http_response_size_bytes",
				Help:    "Response body sizes in bytes",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8), // 16B to 256KB
			},
			[]string{"method"},
		),
		RegisteredHandlers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bogus_registered_handlers",
				Help: "Number of registered handler entries per method",
			},
			[]string{"method"},
		),
		CallLogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bogus_call_log_size",
				Help: "Number of requests recorded in the call log",
			},
		),
	}
}

// ObserveRequest records a single dispatched request
func (m *Metrics) ObserveRequest(method, path, outcome string, status, size int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, NormalizePath(path), outcome, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, outcome).Observe(d.Seconds())
	m.ResponseSize.WithLabelValues(method).Observe(float64(size))
}

// NormalizePath keeps path labels bounded: the query string is dropped and long
// paths are truncated.
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	const maxLength = 50
	if len(path) > maxLength {
		return path[:maxLength] + "..."
	}
	return path
}
