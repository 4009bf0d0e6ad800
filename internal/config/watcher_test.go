package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const watchedConfig = `
server:
  port: 0
routes:
  - path: /profile
    body: Profile
`

type changeRecorder struct {
	mu      sync.Mutex
	changes int
	errs    int
	last    *Config
}

func (r *changeRecorder) onChange(cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes++
	r.last = cfg
	return nil
}

func (r *changeRecorder) onError(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs++
}

func (r *changeRecorder) snapshot() (int, int, *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes, r.errs, r.last
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// logBuffer collects log output written from the debounce goroutine
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startWatcher(t *testing.T, path string, rec *changeRecorder) *Watcher {
	t.Helper()
	return startWatcherWithLogs(t, path, rec, io.Discard)
}

func startWatcherWithLogs(t *testing.T, path string, rec *changeRecorder, logs io.Writer) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w, err := NewWatcher(path, nil, &WatcherConfig{
		DebounceDuration: 100 * time.Millisecond,
		OnChange:         rec.onChange,
		OnError:          rec.onError,
	}, logger)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestWatcher_Reload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &changeRecorder{}
	startWatcher(t, configPath, rec)

	updated := watchedConfig + `  - path: /json
    method: POST
    status: 201
    body: '[{"foo":"bar"}]'
`
	if err := os.WriteFile(configPath, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, _, last := rec.snapshot()
		return last != nil && len(last.Routes) == 2
	})

	_, _, last := rec.snapshot()
	if last.Routes[1].Method != "POST" || last.Routes[1].Status != 201 {
		t.Errorf("Unexpected reloaded route: %+v", last.Routes[1])
	}
}

func TestWatcher_Debounce(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &changeRecorder{}
	startWatcher(t, configPath, rec)

	for i := 0; i < 3; i++ {
		rev := fmt.Sprintf("%s  - path: /rev/%d\n", watchedConfig, i)
		if err := os.WriteFile(configPath, []byte(rev), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, func() bool {
		changes, _, _ := rec.snapshot()
		return changes >= 1
	})
	time.Sleep(300 * time.Millisecond)

	changes, _, last := rec.snapshot()
	if changes != 1 {
		t.Errorf("Expected 1 config change after debouncing, got %d", changes)
	}
	if len(last.Routes) != 2 || last.Routes[1].Path != "/rev/2" {
		t.Errorf("Expected the last revision, got %+v", last.Routes)
	}
}

func TestWatcher_ListenerChangeOnlyWarns(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &changeRecorder{}
	logs := &logBuffer{}
	startWatcherWithLogs(t, configPath, rec, logs)

	moved := strings.Replace(watchedConfig, "port: 0", "port: 18080", 1) + `admin:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(moved), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		return strings.Contains(logs.String(), "Config changed without route changes")
	})

	out := logs.String()
	for _, want := range []string{
		"Server settings changed, restart to apply",
		"addr=127.0.0.1:18080",
		"Admin settings changed, restart to apply",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in logs:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Telemetry settings changed") {
		t.Errorf("Telemetry did not change:\n%s", out)
	}
	if changes, errs, _ := rec.snapshot(); changes != 0 || errs != 0 {
		t.Errorf("Expected no OnChange or OnError calls, got %d and %d", changes, errs)
	}
}

func TestWatcher_RecoversAfterFailedReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &changeRecorder{}
	startWatcher(t, configPath, rec)

	if err := os.WriteFile(configPath, []byte("routes:\n  - path: broken\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, errs, _ := rec.snapshot()
		return errs >= 1
	})

	// Restoring the running table still reaches OnChange so a recorded
	// failure can be cleared.
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		changes, _, _ := rec.snapshot()
		return changes == 1
	})

	_, _, last := rec.snapshot()
	if len(last.Routes) != 1 || last.Routes[0].Path != "/profile" {
		t.Errorf("Unexpected routes after recovery: %+v", last.Routes)
	}
}

func TestRoutesEqual(t *testing.T) {
	base := []Route{
		{Path: "/profile", Body: "Profile"},
		{Path: "/json", Method: "POST", Status: 201, Headers: map[string]string{"Location": "/foo/bar"}},
	}

	tests := []struct {
		name  string
		other []Route
		want  bool
	}{
		{
			name: "defaults spelled out",
			other: []Route{
				{Path: "/profile", Method: "get", Status: 200, Body: "Profile"},
				{Path: "/json", Method: "post", Status: 201, Headers: map[string]string{"Location": "/foo/bar"}},
			},
			want: true,
		},
		{
			name:  "reordered",
			other: []Route{base[1], base[0]},
			want:  false,
		},
		{
			name: "header value",
			other: []Route{
				base[0],
				{Path: "/json", Method: "POST", Status: 201, Headers: map[string]string{"Location": "/other"}},
			},
			want: false,
		},
		{
			name:  "body",
			other: []Route{{Path: "/profile", Body: "Other"}, base[1]},
			want:  false,
		},
		{
			name:  "route removed",
			other: base[:1],
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routesEqual(base, tt.other); got != tt.want {
				t.Errorf("routesEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcher_InvalidConfigReportsError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(configPath, []byte(watchedConfig), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &changeRecorder{}
	startWatcher(t, configPath, rec)

	invalid := `
routes:
  - path: no-leading-slash
`
	if err := os.WriteFile(configPath, []byte(invalid), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, errs, _ := rec.snapshot()
		return errs >= 1
	})

	if changes, _, _ := rec.snapshot(); changes != 0 {
		t.Errorf("OnChange should not run for invalid config, got %d calls", changes)
	}
}

func TestNewWatcher_MissingFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), nil, nil, logger)
	if err == nil {
		t.Error("Expected error watching a missing file")
	}
}
