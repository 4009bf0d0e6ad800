package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check function
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Checker runs named checks in registration order
type Checker struct {
	mu     sync.RWMutex
	checks []namedCheck
}

// NewChecker creates a new health checker
func NewChecker() *Checker {
	return &Checker{}
}

// RegisterCheck registers a health check, replacing any check with the same name
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.checks, func(nc namedCheck) bool { return nc.name == name })
	if i >= 0 {
		c.checks[i].check = check
		return
	}
	c.checks = append(c.checks, namedCheck{name: name, check: check})
}

// CheckHealth runs every check. Checks are cheap reads of server state, so
// they run one after another and stop early once ctx is done.
func (c *Checker) CheckHealth(ctx context.Context) map[string]CheckResult {
	c.mu.RLock()
	checks := slices.Clone(c.checks)
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	for _, nc := range checks {
		start := time.Now()
		err := ctx.Err()
		if err == nil {
			err = nc.check(ctx)
		}

		result := CheckResult{Status: StatusHealthy, Duration: time.Since(start)}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Error = err.Error()
		}
		results[nc.name] = result
	}
	return results
}

// CheckResult represents the result of a health check
type CheckResult struct {
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// StubStatus describes the bogus listener when /health is requested
type StubStatus struct {
	URL         string `json:"url"`
	Promiscuous bool   `json:"promiscuous"`
	Routes      int    `json:"routes"`
	Calls       int    `json:"calls"`
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Stub      StubStatus             `json:"stub"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Version   string                 `json:"version,omitempty"`
	ServiceID string                 `json:"service_id,omitempty"`
}

// Handler serves the admin health endpoints
type Handler struct {
	checker   *Checker
	stub      func() StubStatus
	version   string
	serviceID string
}

// NewHandler creates a health handler. stub is called on every /health and
// /ready request.
func NewHandler(checker *Checker, stub func() StubStatus, version, serviceID string) *Handler {
	return &Handler{
		checker:   checker,
		stub:      stub,
		version:   version,
		serviceID: serviceID,
	}
}

// Register mounts /health, /ready and /live on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /live", h.Live)
}

// Health reports the stub listener and every check result. It answers 503
// when any check fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := h.checker.CheckHealth(ctx)
	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Stub:      h.stub(),
		Checks:    results,
		Version:   h.version,
		ServiceID: h.serviceID,
	}

	statusCode := http.StatusOK
	if !allHealthy(results) {
		response.Status = StatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

// Ready answers 200 once the stub is bound and every check passes
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	url := h.stub().URL
	ready := url != "" && allHealthy(h.checker.CheckHealth(ctx))

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]any{
		"ready": ready,
		"url":   url,
	})
}

// Live answers 200 while the process runs
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func allHealthy(results map[string]CheckResult) bool {
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
