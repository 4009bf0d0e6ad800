package factory

import (
	"log/slog"

	"bogus/internal/config"
	"bogus/internal/telemetry"
	"bogus/pkg/bogus"
	"bogus/pkg/metrics"
)

// CreateStubServer creates the bogus server described by cfg. Telemetry and
// metrics are optional.
func CreateStubServer(cfg config.Server, logger *slog.Logger, m *metrics.Metrics, tel *telemetry.Telemetry) *bogus.Server {
	opts := []bogus.Option{
		bogus.WithListenAddr(cfg.Addr()),
		bogus.WithPromiscuous(cfg.IsPromiscuous()),
		bogus.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, bogus.WithMetrics(m))
	}
	if tel != nil && tel.Enabled() {
		opts = append(opts, bogus.WithTracer(tel.Tracer()), bogus.WithMeter(tel.Meter()))
	}
	return bogus.New(opts...)
}

// RouteTable groups configured routes by method, keeping file order
func RouteTable(routes []config.Route) map[string][]bogus.Entry {
	table := make(map[string][]bogus.Entry)
	for i := range routes {
		method := routes[i].MethodOrDefault()
		table[method] = append(table[method], routes[i].ToEntry())
	}
	return table
}
