package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"bogus/internal/app/factory"
	"bogus/internal/config"
	"bogus/internal/telemetry"
	"bogus/pkg/bogus"
	boguserrors "bogus/pkg/errors"
)

// Server runs a configured bogus server plus its optional admin listener
type Server struct {
	config    *config.Config
	stub      *bogus.Server
	telemetry *telemetry.Telemetry
	admin     *http.Server
	logger    *slog.Logger

	mu        sync.RWMutex
	adminURL  string
	reloadErr error
}

// NewServer creates a new server from configuration
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return NewBuilder(cfg, logger).Build()
}

// Start binds the stub listener and, when enabled, the admin listener. It
// returns once both accept connections; serving continues in the background
// until Stop.
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	url, err := s.stub.Serve()
	if err != nil {
		return fmt.Errorf("bogus server: %w", err)
	}
	s.logger.Info("Bogus server listening", "url", url, "routes", s.stub.Registry().Len())

	if s.admin == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.admin.Addr)
	if err != nil {
		_ = s.stub.Close(ctx)
		return boguserrors.NewError(boguserrors.ErrorTypeBind, "failed to listen for admin").
			WithCause(err).
			WithDetail("addr", s.admin.Addr)
	}

	s.mu.Lock()
	s.adminURL = "http://" + ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.admin.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin server error", "error", err)
		}
	}()

	s.logger.Info("Admin listener started", "url", s.AdminURL())
	return nil
}

// Stop shuts down both listeners and flushes telemetry
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.admin != nil {
		if err := s.admin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping admin server: %w", err))
		}
		s.mu.Lock()
		s.adminURL = ""
		s.mu.Unlock()
	}

	if err := s.stub.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping bogus server: %w", err))
	}

	if err := s.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping telemetry: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Info("Bogus server stopped", "requests", s.stub.CallLog().Len())
	return nil
}

// ApplyRoutes replaces every registered route with routes
func (s *Server) ApplyRoutes(routes []config.Route) {
	s.stub.ReplaceRoutes(factory.RouteTable(routes))
}

// Reload applies a freshly loaded config. Only routes take effect while
// running; listener settings need a restart.
func (s *Server) Reload(cfg *config.Config) error {
	s.ApplyRoutes(cfg.Routes)
	s.setReloadError(nil)
	s.logger.Info("Routes reloaded", "routes", len(cfg.Routes))
	return nil
}

// ReloadFailed records a failed reload so /health reports it
func (s *Server) ReloadFailed(err error) {
	s.setReloadError(err)
}

// LastReloadError returns the error of the latest reload, nil after a success
func (s *Server) LastReloadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloadErr
}

func (s *Server) setReloadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadErr = err
}

// URL returns the stub base URL, "" when not started
func (s *Server) URL() string {
	return s.stub.URL()
}

// AdminURL returns the admin base URL, "" when disabled or not started
func (s *Server) AdminURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminURL
}

// Stub returns the underlying bogus server
func (s *Server) Stub() *bogus.Server {
	return s.stub
}
