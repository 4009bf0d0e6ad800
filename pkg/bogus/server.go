package bogus

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	boguserrors "bogus/pkg/errors"
	"bogus/pkg/metrics"
)

// Server is a real HTTP listener that answers with registered handlers
type Server struct {
	promiscuous bool
	listenAddr  string
	dispatcher  *Dispatcher
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu     sync.Mutex
	server *http.Server
	url    string
}

// New creates a server. It does not listen until Serve is called.
func New(opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.complete()

	return &Server{
		promiscuous: o.promiscuous,
		listenAddr:  o.listenAddr,
		dispatcher:  newDispatcher(o),
		metrics:     o.metrics,
		logger:      o.logger.With("component", "bogus"),
	}
}

// Serve binds the listener, starts serving in the background and returns
// the base URL. Once serving, further calls return the same URL.
func (s *Server) Serve() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.url != "" {
		return s.url, nil
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return "", boguserrors.NewError(boguserrors.ErrorTypeBind, "failed to listen").
			WithCause(err).
			WithDetail("addr", s.listenAddr)
	}

	srv := &http.Server{
		Handler:           s.dispatcher,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.url = "http://" + ln.Addr().String()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	s.logger.Info("serving", "url", s.url, "promiscuous", s.promiscuous)
	return s.url, nil
}

// URL returns the base URL, or "" when not serving
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Close gracefully stops the listener. The server may be served again afterwards.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.url = ""
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("stopping server", "requests", s.dispatcher.CallLog().Len())
	return srv.Shutdown(ctx)
}

// Register adds a handler for route. Method defaults to GET.
func (s *Server) Register(route string, fn HandlerFunc, opts ...RegisterOption) {
	reg := &registration{method: http.MethodGet}
	for _, opt := range opts {
		opt(reg)
	}

	registry := s.dispatcher.Registry()
	registry.Register(Entry{Route: route, Handler: fn, Headers: reg.headers}, reg.method)

	if s.metrics != nil {
		method := normalizeMethod(reg.method)
		s.metrics.RegisteredHandlers.WithLabelValues(method).Set(float64(len(registry.Entries(method))))
	}
}

// ReplaceRoutes atomically swaps every registered entry for entries, keyed by
// method. The call log is kept.
func (s *Server) ReplaceRoutes(entries map[string][]Entry) {
	registry := s.dispatcher.Registry()
	registry.Replace(entries)

	if s.metrics != nil {
		s.metrics.RegisteredHandlers.Reset()
		for _, method := range registry.Methods() {
			s.metrics.RegisteredHandlers.WithLabelValues(method).Set(float64(len(registry.Entries(method))))
		}
	}
	s.logger.Debug("routes replaced", "entries", registry.Len())
}

// Reset clears the registry and the call log
func (s *Server) Reset() {
	s.dispatcher.Registry().Reset()
	s.dispatcher.CallLog().Reset()
	if s.metrics != nil {
		s.metrics.RegisteredHandlers.Reset()
		s.metrics.CallLogSize.Set(0)
	}
}

// Promiscuous reports whether unmatched routes answer 200
func (s *Server) Promiscuous() bool {
	return s.promiscuous
}

// Handler returns the dispatcher, for use without a listener
func (s *Server) Handler() http.Handler {
	return s.dispatcher
}

// Registry returns the server's registry
func (s *Server) Registry() *Registry {
	return s.dispatcher.Registry()
}

// CallLog returns the server's call log
func (s *Server) CallLog() *CallLog {
	return s.dispatcher.CallLog()
}

// CalledPaths returns every requested path in request order
func (s *Server) CalledPaths() []string {
	return s.dispatcher.CallLog().Paths()
}

// LastResponse returns the most recently sent response
func (s *Server) LastResponse() (Response, bool) {
	return s.dispatcher.LastResponse()
}
