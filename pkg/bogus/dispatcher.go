package bogus

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	boguserrors "bogus/pkg/errors"
	"bogus/pkg/metrics"
)

// Dispatcher is the http.Handler behind a Server. For every request it
// records the path, looks up a handler, invokes it and sends the response.
type Dispatcher struct {
	registry    *Registry
	calls       *CallLog
	promiscuous bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	requests    metric.Int64Counter

	mu   sync.Mutex
	last *Response
}

// NewDispatcher creates a dispatcher. Listen-related options are ignored.
func NewDispatcher(opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.complete()
	return newDispatcher(o)
}

func newDispatcher(o *options) *Dispatcher {
	d := &Dispatcher{
		registry:    o.registry,
		calls:       o.calls,
		promiscuous: o.promiscuous,
		logger:      o.logger.With("component", "bogus"),
		metrics:     o.metrics,
		tracer:      o.tracer,
	}

	if o.meter != nil {
		counter, err := o.meter.Int64Counter(
			"bogus.requests",
			metric.WithDescription("Requests dispatched by the bogus server"),
			metric.WithUnit("1"),
		)
		if err != nil {
			d.logger.Warn("failed to create request counter", "error", err)
		} else {
			d.requests = counter
		}
	}

	return d
}

// ServeHTTP implements http.Handler
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	// The raw request target is matched as received, query string included.
	path := r.RequestURI
	if path == "" {
		path = r.URL.RequestURI()
	}

	var span trace.Span
	if d.tracer != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
		ctx, span = d.tracer.Start(ctx, "bogus.dispatch",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", path),
			),
		)
		defer span.End()
	}

	call := d.calls.Record(r.Method, path)

	resp, outcome, err := d.dispatch(r.Method, path)
	if err != nil {
		var bErr *boguserrors.Error
		if errors.As(err, &bErr) {
			d.logger.Error("request failed",
				"id", call.ID,
				"type", bErr.Type,
				"error", bErr.Error(),
				"details", bErr.Details)
		} else {
			d.logger.Error("request failed", "id", call.ID, "error", err)
		}
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	d.setLast(resp)
	if err := resp.Send(w); err != nil {
		d.logger.Error("failed to write response",
			"id", call.ID,
			"path", path,
			"error", err)
	}

	duration := time.Since(start)
	d.logger.Debug("request dispatched",
		"id", call.ID,
		"method", r.Method,
		"path", path,
		"status", resp.Status,
		"outcome", outcome,
		"duration", duration)

	if span != nil {
		span.SetAttributes(
			attribute.Int("http.response.status_code", resp.Status),
			attribute.String("bogus.outcome", outcome),
		)
	}
	if d.requests != nil {
		d.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("outcome", outcome),
			attribute.Int("status", resp.Status),
		))
	}
	if d.metrics != nil {
		d.metrics.ObserveRequest(r.Method, path, outcome, resp.Status, len(resp.Body), duration)
		d.metrics.CallLogSize.Set(float64(d.calls.Len()))
	}
}

// dispatch resolves the response for method and path. A non-nil error is
// always accompanied by a usable response.
func (d *Dispatcher) dispatch(method, path string) (Response, string, error) {
	entry, ok := d.registry.Lookup(method, path)
	if !ok {
		if d.promiscuous {
			return Response{Status: http.StatusOK}, metrics.OutcomeDefault, nil
		}
		nf := boguserrors.NewError(boguserrors.ErrorTypeNotFound, "no handler registered").
			WithDetail("method", method).
			WithDetail("path", path)
		d.logger.Debug("route not found",
			"type", nf.Type,
			"error", nf.Error(),
			"details", nf.Details)
		return Response{Status: nf.HTTPStatusCode()}, metrics.OutcomeNotFound, nil
	}

	result, err := callHandler(entry.Handler)
	if err != nil {
		var bErr *boguserrors.Error
		if errors.As(err, &bErr) {
			bErr.WithDetail("method", method).WithDetail("route", entry.Route)
		}
		return Response{Status: http.StatusInternalServerError}, metrics.OutcomeContractViolation, err
	}

	return Response{
		Status:  result.Status,
		Body:    result.Body,
		Headers: entry.Headers,
	}, metrics.OutcomeMatched, nil
}

// callHandler invokes fn and validates what it returned. A panic or a
// status outside 200..999 breaks the handler contract.
func callHandler(fn HandlerFunc) (result Result, err error) {
	if fn == nil {
		return Result{}, boguserrors.NewError(boguserrors.ErrorTypeContractViolation, "handler function is nil")
	}

	defer func() {
		if r := recover(); r != nil {
			err = boguserrors.NewError(boguserrors.ErrorTypeContractViolation, "handler function panicked").
				WithDetail("panic", fmt.Sprintf("%v", r))
		}
	}()

	result = fn()
	if result.Status < 200 || result.Status > 999 {
		return Result{}, boguserrors.NewError(boguserrors.ErrorTypeContractViolation, "handler function should return a body and a valid status").
			WithDetail("status", result.Status)
	}
	return result, nil
}

func (d *Dispatcher) setLast(resp Response) {
	d.mu.Lock()
	d.last = &resp
	d.mu.Unlock()
}

// LastResponse returns the most recently sent response
func (d *Dispatcher) LastResponse() (Response, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return Response{}, false
	}
	return *d.last, true
}

// Registry returns the registry the dispatcher reads from
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// CallLog returns the call log the dispatcher records into
func (d *Dispatcher) CallLog() *CallLog {
	return d.calls
}
