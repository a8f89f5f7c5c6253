package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid"
	"github.com/jpalmerr/dashgrid/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a logger for CLI use from the log section of the config.
func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// serveCmd starts the dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the dashgrid dashboard server.

The server will:
  - Load configuration from the given file, or use defaults
  - Open the storage backend and load the dashboard
  - Add the configured seed panels if the dashboard is empty
  - Serve the dashboard UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  dashgrid serve
  dashgrid serve -c dashgrid.yaml
  dashgrid serve --config /etc/dashgrid/dashgrid.toml --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "override the configured port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}

	logger := newLogger(os.Stderr, cfg.Log)

	logger.Info("config loaded",
		"panels", len(cfg.Panels),
		"grids", len(cfg.Grids),
		"storage_driver", cfg.Storage.Driver,
		"storage_path", cfg.Storage.Path,
	)

	opts, backend, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing storage", "error", err)
		}
	}()
	opts = append(opts, dashgrid.WithLogger(logger))

	app, err := dashgrid.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create dashgrid: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, app, logger)
}

// serve runs app until ctx is cancelled and waits a bounded time for it to
// shut down.
func serve(ctx context.Context, app *dashgrid.App, logger *slog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
