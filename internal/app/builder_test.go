package app

import (
	"io"
	"log/slog"
	"testing"

	"bogus/internal/config"
	"bogus/internal/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.Server{Host: "127.0.0.1"},
		Admin: config.Admin{
			Host:        "127.0.0.1",
			MetricsPath: "/metrics",
		},
		Routes: []config.Route{
			{Path: "/profile", Method: "GET", Status: 200, Body: "Profile"},
			{Path: "/json", Method: "POST", Status: 201, Body: `[{"foo":"bar"}]`,
				Headers: map[string]string{"Location": "/json/1"}},
		},
	}
}

func TestNewBuilder(t *testing.T) {
	cfg := testConfig()
	logger := quietLogger()

	builder := NewBuilder(cfg, logger)
	if builder.config != cfg {
		t.Error("Config not set correctly")
	}
	if builder.logger != logger {
		t.Error("Logger not set correctly")
	}
	if builder.version != "dev" {
		t.Errorf("Expected default version dev, got %s", builder.version)
	}

	builder.WithVersion("")
	if builder.version != "dev" {
		t.Error("Empty version should not override")
	}
	builder.WithVersion("v1.2.3")
	if builder.version != "v1.2.3" {
		t.Errorf("Expected v1.2.3, got %s", builder.version)
	}
}

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *config.Config)
		wantAdmin bool
		wantErr   bool
	}{
		{
			name:      "stub only",
			mutate:    func(cfg *config.Config) {},
			wantAdmin: false,
		},
		{
			name: "with admin listener",
			mutate: func(cfg *config.Config) {
				cfg.Admin.Enabled = true
			},
			wantAdmin: true,
		},
		{
			name: "with otel metrics",
			mutate: func(cfg *config.Config) {
				cfg.Telemetry = telemetry.Config{
					Enabled: true,
					Service: "bogus-test",
					Metrics: telemetry.MetricsConfig{Enabled: true},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			server, err := NewBuilder(cfg, quietLogger()).Build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if got := server.admin != nil; got != tt.wantAdmin {
				t.Errorf("admin configured = %v, want %v", got, tt.wantAdmin)
			}
			if n := server.Stub().Registry().Len(); n != 2 {
				t.Errorf("Expected 2 registered routes, got %d", n)
			}
			if server.URL() != "" {
				t.Error("Build must not bind a listener")
			}
		})
	}
}
