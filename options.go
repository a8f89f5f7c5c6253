package dashgrid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/internal/refresh"
)

// Watcher reports changes to a stored key made outside this process.
// [kv.FileStore] implements it.
type Watcher interface {
	Watch(ctx context.Context, key string, onChange func()) error
}

// appConfig holds mutable state during App construction.
type appConfig struct {
	title           string
	port            int
	kv              board.KV
	storeKey        string
	logger          *slog.Logger
	refreshInterval time.Duration
	writeRate       float64
	writeBurst      int
	watcher         Watcher
	seeds           []PanelSeed
	eventCallbacks  []func(board.Event)
}

// Option is a function that configures an [App] during construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
type Option func(*appConfig) error

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Dashgrid".
func WithTitle(title string) Option {
	return func(cfg *appConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// Defaults to 8080 if not specified. Returns an error if the port is
// outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *appConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithKV sets the key-value backend the dashboard is persisted to.
//
// Defaults to an in-memory backend, which loses the dashboard on exit.
//
// Example:
//
//	fs, err := kv.NewFileStore(".dashgrid")
//	...
//	app, err := dashgrid.New(dashgrid.WithKV(fs), dashgrid.WithWatcher(fs))
//
// Returns an error if backend is nil.
func WithKV(backend board.KV) Option {
	return func(cfg *appConfig) error {
		if backend == nil {
			return errors.New("kv backend cannot be nil")
		}
		cfg.kv = backend
		return nil
	}
}

// WithStoreKey sets the key the dashboard is stored under.
// Defaults to "dashboard".
func WithStoreKey(key string) Option {
	return func(cfg *appConfig) error {
		if strings.TrimSpace(key) == "" {
			return errors.New("store key cannot be empty")
		}
		cfg.storeKey = key
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the App and everything it
// starts. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRefreshInterval regenerates every panel's sample data on an interval
// while the server runs. Zero disables refreshing, which is the default.
//
// Returns an error if d is negative or shorter than 100ms.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		if d > 0 && d < refresh.MinInterval {
			return fmt.Errorf("refresh interval must be at least %s, got %s", refresh.MinInterval, d)
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithWriteRate limits mutating API requests to r per second with the given
// burst. Requests over the limit wait for a token. A rate of zero disables
// limiting. Defaults to 20 per second with a burst of 40.
//
// Returns an error if r is negative, or if r is positive and burst < 1.
func WithWriteRate(r float64, burst int) Option {
	return func(cfg *appConfig) error {
		if r < 0 {
			return errors.New("write rate cannot be negative")
		}
		if r > 0 && burst < 1 {
			return errors.New("write burst must be at least 1")
		}
		cfg.writeRate = r
		cfg.writeBurst = burst
		return nil
	}
}

// WithWatcher reloads the dashboard when the backend reports a change made
// by another process. The last write wins; a warning is logged on reload.
//
// Nil watchers are silently ignored.
func WithWatcher(w Watcher) Option {
	return func(cfg *appConfig) error {
		cfg.watcher = w
		return nil
	}
}

// WithPanels adds panels created on first run, when the stored dashboard
// has no panels. Seeds are added in order.
func WithPanels(seeds ...PanelSeed) Option {
	return func(cfg *appConfig) error {
		cfg.seeds = append(cfg.seeds, seeds...)
		return nil
	}
}

// WithEventCallback registers a function called for every dashboard change
// while the server runs.
//
// Callbacks are invoked synchronously from a single goroutine and must not
// block. Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithEventCallback(cb func(board.Event)) Option {
	return func(cfg *appConfig) error {
		if cb == nil {
			return nil
		}
		cfg.eventCallbacks = append(cfg.eventCallbacks, cb)
		return nil
	}
}
