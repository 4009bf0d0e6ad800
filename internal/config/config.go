package config

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"bogus/internal/telemetry"
	"bogus/pkg/bogus"
)

// Config holds the configuration of a standalone bogus server
type Config struct {
	Server    Server           `yaml:"server"`
	Admin     Admin            `yaml:"admin"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Routes    []Route          `yaml:"routes"`
}

// Server configuration
type Server struct {
	Host string `yaml:"host"`
	// Port 0 picks an ephemeral port
	Port        int   `yaml:"port"`
	Promiscuous *bool `yaml:"promiscuous,omitempty"`
}

// Admin listener configuration. It serves metrics away from the stubbed routes.
type Admin struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metricsPath"`
}

// Route is one canned response
type Route struct {
	Path    string            `yaml:"path"`
	Method  string            `yaml:"method"`
	Status  int               `yaml:"status"`
	Body    string            `yaml:"body"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// IsPromiscuous reports the promiscuous flag, true when unset
func (s *Server) IsPromiscuous() bool {
	return s.Promiscuous == nil || *s.Promiscuous
}

// Addr returns host:port
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Addr returns host:port
func (a *Admin) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// MethodOrDefault returns the upper-cased method, GET when unset
func (r *Route) MethodOrDefault() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r *Route) statusOrDefault() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// ToEntry converts to bogus.Entry
func (r *Route) ToEntry() bogus.Entry {
	return bogus.Entry{
		Route:   r.Path,
		Handler: bogus.Respond(r.Body, r.statusOrDefault()),
		Headers: r.Headers,
	}
}
