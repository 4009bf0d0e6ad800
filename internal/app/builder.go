package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bogus/internal/app/factory"
	"bogus/internal/config"
	"bogus/internal/middleware"
)

// Builder builds the standalone bogus application
type Builder struct {
	config  *config.Config
	logger  *slog.Logger
	version string
}

// NewBuilder creates a new application builder
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{
		config:  cfg,
		logger:  logger,
		version: "dev",
	}
}

// WithVersion sets the build version reported by telemetry and /health
func (b *Builder) WithVersion(version string) *Builder {
	if version != "" {
		b.version = version
	}
	return b
}

// Build constructs the server. Nothing listens until Start.
func (b *Builder) Build() (*Server, error) {
	promRegistry := factory.CreatePrometheusRegistry()
	stubMetrics := factory.CreateMetrics(promRegistry)

	tel, err := factory.CreateTelemetry(b.config.Telemetry, b.version, promRegistry, b.logger)
	if err != nil {
		return nil, err
	}

	stub := factory.CreateStubServer(b.config.Server, b.logger, stubMetrics, tel)

	s := &Server{
		config:    b.config,
		stub:      stub,
		telemetry: tel,
		logger:    b.logger.With("component", "app"),
	}
	s.ApplyRoutes(b.config.Routes)

	if b.config.Admin.Enabled {
		checker := factory.CreateHealthChecker(stub, s.LastReloadError)
		healthHandler := factory.CreateHealthHandler(checker, stub, b.version, serviceID())

		adminLogger := b.logger.With("component", "admin")
		mux := http.NewServeMux()
		mux.Handle(b.config.Admin.MetricsPath, factory.CreateMetricsHandler(promRegistry))
		healthHandler.Register(mux)

		s.admin = &http.Server{
			Addr:              b.config.Admin.Addr(),
			Handler:           middleware.Chain(middleware.Recovery(adminLogger), middleware.Logging(adminLogger))(mux),
			ReadHeaderTimeout: 10 * time.Second,
		}
		b.logger.Info("Admin listener enabled",
			"addr", s.admin.Addr,
			"metrics", b.config.Admin.MetricsPath,
		)
	}

	return s, nil
}

func serviceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return fmt.Sprintf("bogus-%s-%d", host, os.Getpid())
}
