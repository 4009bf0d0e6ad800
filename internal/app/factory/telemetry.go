package factory

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"bogus/internal/telemetry"
)

// CreateTelemetry creates tracing and OTel metrics from configuration. The
// build version fills in when the config leaves it empty.
func CreateTelemetry(cfg telemetry.Config, version string, registerer prometheus.Registerer, logger *slog.Logger) (*telemetry.Telemetry, error) {
	if cfg.Version == "" {
		cfg.Version = version
	}

	tel, err := telemetry.New(cfg, registerer)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry: %w", err)
	}

	if tel.Enabled() {
		logger.Info("Telemetry enabled",
			"service", cfg.Service,
			"version", cfg.Version,
			"tracing", cfg.Tracing.Enabled,
			"metrics", cfg.Metrics.Enabled,
		)
	}
	return tel, nil
}
