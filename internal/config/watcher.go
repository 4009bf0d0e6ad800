package config

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig holds configuration for the config watcher
type WatcherConfig struct {
	// Debounce duration to avoid multiple rapid reloads
	DebounceDuration time.Duration
	// OnChange receives a reloaded config whose route table differs from the
	// one last applied, or any valid config after a failed reload
	OnChange func(newConfig *Config) error
	// OnError receives load and watch failures
	OnError func(error)
}

// DefaultWatcherConfig returns default watcher configuration
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceDuration: 500 * time.Millisecond,
	}
}

// Watcher reloads the route table when the config file changes on disk.
// Listener settings are fixed at startup; edits to them are logged and
// otherwise ignored.
type Watcher struct {
	configPath string
	config     *WatcherConfig
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup

	mu        sync.Mutex
	debouncer *time.Timer
	running   *Config
	failed    bool
}

// NewWatcher watches configPath. running is the config the server started
// with; when nil the file's current contents are used.
func NewWatcher(configPath string, running *Config, config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if config.DebounceDuration <= 0 {
		config.DebounceDuration = DefaultWatcherConfig().DebounceDuration
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if running == nil {
		if running, err = Load(absPath); err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		configPath: absPath,
		config:     config,
		watcher:    watcher,
		logger:     logger.With("component", "config-watcher"),
		stopCh:     make(chan struct{}),
		running:    running,
	}

	if err := watcher.Add(absPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// The directory catches editors that replace the file atomically
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch config directory", "dir", dir, "error", err)
	}

	return w, nil
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.watchLoop()
	w.logger.Info("Watching routes", "file", w.configPath, "routes", len(w.running.Routes))
}

// Stop stops the configuration watcher
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	w.mu.Lock()
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)
			if w.config.OnError != nil {
				w.config.OnError(fmt.Errorf("watcher error: %w", err))
			}

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Name != w.configPath {
		return
	}

	switch {
	case event.Has(fsnotify.Remove):
		w.logger.Warn("Config file removed, keeping current routes", "file", event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
		// Atomic saves swap the inode; watch the new file
		_ = w.watcher.Add(w.configPath)
		w.scheduleReload()
	case event.Has(fsnotify.Write):
		w.scheduleReload()
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	w.debouncer = time.AfterFunc(w.config.DebounceDuration, func() {
		err := w.reload()
		w.mu.Lock()
		w.failed = err != nil
		w.mu.Unlock()
		if err != nil {
			w.logger.Error("Config reload failed", "error", err)
			if w.config.OnError != nil {
				w.config.OnError(err)
			}
		}
	})
}

func (w *Watcher) reload() error {
	next, err := Load(w.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w.mu.Lock()
	running, failed := w.running, w.failed
	w.mu.Unlock()

	w.warnRestartRequired(running, next)

	// After a failure OnChange runs even for an unchanged table so the
	// receiver can clear its error state.
	if !failed && routesEqual(running.Routes, next.Routes) {
		w.logger.Debug("Config changed without route changes", "file", w.configPath)
		return nil
	}

	if w.config.OnChange != nil {
		if err := w.config.OnChange(next); err != nil {
			return fmt.Errorf("failed to apply routes: %w", err)
		}
	}

	applied := *running
	applied.Routes = next.Routes
	w.mu.Lock()
	w.running = &applied
	w.mu.Unlock()

	w.logger.Debug("Route table changed", "routes", len(next.Routes))
	return nil
}

// warnRestartRequired logs every section of next that only takes effect
// after a restart
func (w *Watcher) warnRestartRequired(running, next *Config) {
	if running.Server.Addr() != next.Server.Addr() || running.Server.IsPromiscuous() != next.Server.IsPromiscuous() {
		w.logger.Warn("Server settings changed, restart to apply",
			"addr", next.Server.Addr(),
			"promiscuous", next.Server.IsPromiscuous(),
		)
	}
	if running.Admin != next.Admin {
		w.logger.Warn("Admin settings changed, restart to apply",
			"enabled", next.Admin.Enabled,
			"addr", next.Admin.Addr(),
		)
	}
	if !reflect.DeepEqual(running.Telemetry, next.Telemetry) {
		w.logger.Warn("Telemetry settings changed, restart to apply",
			"enabled", next.Telemetry.Enabled,
		)
	}
}

// routesEqual compares route tables entry by entry, order included since
// the first matching route wins.
func routesEqual(a, b []Route) bool {
	return slices.EqualFunc(a, b, func(x, y Route) bool {
		return x.Path == y.Path &&
			x.MethodOrDefault() == y.MethodOrDefault() &&
			x.statusOrDefault() == y.statusOrDefault() &&
			x.Body == y.Body &&
			maps.Equal(x.Headers, y.Headers)
	})
}
