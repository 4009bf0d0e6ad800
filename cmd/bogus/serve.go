package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bogus/internal/app"
	"bogus/internal/config"
)

type serveOptions struct {
	configFile string
	watch      bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a bogus server with routes from a config file",
		Long: `Run a bogus server until interrupted. The base URL is printed on stdout once
the listener is bound, which makes port 0 usable from scripts.

Examples:
  bogus serve                                # promiscuous server on an ephemeral port
  bogus serve --config routes.yaml --watch   # reload routes when the file changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "config file path (embedded defaults when empty)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload routes when the config file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	logger := slog.Default()

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	server, err := app.NewBuilder(cfg, logger).WithVersion(version).Build()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), server.URL())

	if opts.watch {
		if opts.configFile == "" {
			logger.Warn("Nothing to watch without --config")
		} else {
			watcher, err := config.NewWatcher(opts.configFile, cfg, &config.WatcherConfig{
				DebounceDuration: config.DefaultWatcherConfig().DebounceDuration,
				OnChange:         server.Reload,
				OnError:          server.ReloadFailed,
			}, logger)
			if err != nil {
				shutdown(server, logger)
				return fmt.Errorf("failed to watch config: %w", err)
			}
			watcher.Start()
			defer watcher.Stop()
		}
	}

	<-ctx.Done()
	return shutdown(server, logger)
}

func shutdown(server *app.Server, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("failed to stop server", "error", err)
		return err
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}
