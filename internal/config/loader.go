package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bogus/pkg/errors"
)

// Loader loads configuration from file
type Loader struct {
	path       string
	envEnabled bool
}

// NewLoader creates a config loader
func NewLoader(path string) *Loader {
	return &Loader{
		path:       path,
		envEnabled: true,
	}
}

// WithEnvVars enables or disables environment variable loading
func (l *Loader) WithEnvVars(enabled bool) *Loader {
	l.envEnabled = enabled
	return l
}

// Load loads the configuration
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to read config file").WithCause(err)
	}
	return l.parse(data)
}

// Load reads, overlays env vars onto and validates the config at path
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func (l *Loader) parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "failed to parse config").WithCause(err)
	}

	if l.envEnabled {
		if err := LoadEnv(&cfg); err != nil {
			return nil, errors.NewError(errors.ErrorTypeBadRequest, "failed to load env vars").WithCause(err)
		}
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "invalid configuration").WithCause(err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Admin.Host == "" {
		cfg.Admin.Host = "127.0.0.1"
	}
	if cfg.Admin.MetricsPath == "" {
		cfg.Admin.MetricsPath = "/metrics"
	}
	for i := range cfg.Routes {
		r := &cfg.Routes[i]
		r.Method = r.MethodOrDefault()
		if r.Status == 0 {
			r.Status = 200
		}
	}
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Admin.Enabled {
		if cfg.Admin.Port < 0 || cfg.Admin.Port > 65535 {
			return fmt.Errorf("invalid admin port: %d", cfg.Admin.Port)
		}
		if !strings.HasPrefix(cfg.Admin.MetricsPath, "/") {
			return fmt.Errorf("admin metrics path must start with /: %q", cfg.Admin.MetricsPath)
		}
		switch cfg.Admin.MetricsPath {
		case "/health", "/ready", "/live":
			return fmt.Errorf("admin metrics path %q collides with a health endpoint", cfg.Admin.MetricsPath)
		}
	}

	for i, route := range cfg.Routes {
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("route %d: path must start with /: %q", i, route.Path)
		}
		if route.Status != 0 && (route.Status < 200 || route.Status > 999) {
			return fmt.Errorf("route %d: invalid status %d", i, route.Status)
		}
	}

	return nil
}
