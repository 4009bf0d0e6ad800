package bogus

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bogus/pkg/metrics"
)

// DefaultListenAddr binds an ephemeral port on the loopback interface
const DefaultListenAddr = "127.0.0.1:0"

type options struct {
	promiscuous bool
	listenAddr  string
	registry    *Registry
	calls       *CallLog
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	meter       metric.Meter
}

func defaultOptions() *options {
	return &options{
		promiscuous: true,
		listenAddr:  DefaultListenAddr,
	}
}

func (o *options) complete() {
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.calls == nil {
		o.calls = NewCallLog()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
}

// Option configures a Server or Dispatcher
type Option func(*options)

// WithPromiscuous sets whether unmatched routes answer 200 with an empty body
// (true, the default) or 404.
func WithPromiscuous(promiscuous bool) Option {
	return func(o *options) { o.promiscuous = promiscuous }
}

// WithListenAddr sets the address Serve binds to
func WithListenAddr(addr string) Option {
	return func(o *options) { o.listenAddr = addr }
}

// WithRegistry shares a registry instead of creating a private one
func WithRegistry(registry *Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithCallLog shares a call log instead of creating a private one
func WithCallLog(calls *CallLog) Option {
	return func(o *options) { o.calls = calls }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables Prometheus collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer enables a span per dispatched request
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithMeter enables the OpenTelemetry request counter
func WithMeter(meter metric.Meter) Option {
	return func(o *options) { o.meter = meter }
}

type registration struct {
	method  string
	headers map[string]string
}

// RegisterOption configures a single registration
type RegisterOption func(*registration)

// Method sets the HTTP method of a registration. Default is GET.
func Method(method string) RegisterOption {
	return func(r *registration) { r.method = method }
}

// Headers sets extra response headers for a registration
func Headers(headers map[string]string) RegisterOption {
	return func(r *registration) { r.headers = headers }
}
