package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	bogusmetrics "bogus/pkg/metrics"
)

func TestHandlerServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := bogusmetrics.NewWithRegistry(registry)
	m.CallLogSize.Set(2)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "bogus_call_log_size 2") {
		t.Errorf("Expected call log gauge in output, got:\n%s", body)
	}
}

func TestHandlerDefaultRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
