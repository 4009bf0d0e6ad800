package factory

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	metricshandler "bogus/internal/metrics"
	"bogus/pkg/metrics"
)

// CreatePrometheusRegistry creates the registry served on the admin listener,
// preloaded with the Go runtime and process collectors.
func CreatePrometheusRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// CreateMetrics creates the dispatch collectors on registerer
func CreateMetrics(registerer prometheus.Registerer) *metrics.Metrics {
	return metrics.NewWithRegistry(registerer)
}

// CreateMetricsHandler creates the Prometheus metrics HTTP handler
func CreateMetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return metricshandler.Handler(gatherer)
}
