package dashgrid

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/dashboard"
	"github.com/jpalmerr/dashgrid/kv"
	"github.com/jpalmerr/dashgrid/internal/refresh"
	"github.com/jpalmerr/dashgrid/internal/server"
)

const (
	defaultPort       = 8080
	defaultWriteRate  = 20
	defaultWriteBurst = 40
)

// App serves a dashboard over HTTP and keeps it persisted.
//
// App is created using [New] with functional options and started with
// [App.Start]. The typical lifecycle is:
//
//	app, err := dashgrid.New(dashgrid.WithKV(backend))
//	if err != nil {
//	    slog.Error("failed to create dashgrid", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	app.Start(ctx) // blocks until context cancelled
type App struct {
	title           string
	port            int
	logger          *slog.Logger
	store           *board.Store
	session         *board.Session
	refreshInterval time.Duration
	writeRate       float64
	writeBurst      int
	watcher         Watcher
	seeds           []PanelSeed
	eventCallbacks  []func(board.Event)

	openOnce sync.Once
	openErr  error
}

// New creates a new [App] with the given options.
//
// Defaults:
//   - Port: 8080
//   - Backend: in memory
//   - Store key: "dashboard"
//   - Write rate: 20 per second, burst 40
//   - Refresh: disabled
func New(opts ...Option) (*App, error) {
	cfg := &appConfig{
		port:       defaultPort,
		storeKey:   board.DefaultKey,
		writeRate:  defaultWriteRate,
		writeBurst: defaultWriteBurst,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.kv
	if backend == nil {
		backend = kv.NewMemoryStore()
	}

	store := board.NewStore(backend,
		board.WithKey(cfg.storeKey),
		board.WithLogger(logger),
	)

	return &App{
		title:           cfg.title,
		port:            cfg.port,
		logger:          logger,
		store:           store,
		session:         board.NewSession(store),
		refreshInterval: cfg.refreshInterval,
		writeRate:       cfg.writeRate,
		writeBurst:      cfg.writeBurst,
		watcher:         cfg.watcher,
		seeds:           cfg.seeds,
		eventCallbacks:  cfg.eventCallbacks,
	}, nil
}

// Session returns the dashboard session. Call [App.Open] or [App.Start]
// before using it.
func (a *App) Session() *board.Session {
	return a.session
}

// Port returns the configured HTTP port.
func (a *App) Port() int {
	return a.port
}

// Title returns the configured dashboard title.
func (a *App) Title() string {
	return a.title
}

// RefreshInterval returns the sample data refresh interval, zero if disabled.
func (a *App) RefreshInterval() time.Duration {
	return a.refreshInterval
}

// Open loads the dashboard and, if it has no panels, adds the configured
// seed panels. Open is idempotent; later calls return the first result.
func (a *App) Open(ctx context.Context) error {
	a.openOnce.Do(func() {
		a.session.Open(ctx)
		a.openErr = a.seed(ctx)
	})
	return a.openErr
}

func (a *App) seed(ctx context.Context) error {
	if len(a.seeds) == 0 {
		return nil
	}
	d, err := a.session.Snapshot()
	if err != nil {
		return err
	}
	if len(d.Panels) > 0 {
		return nil
	}

	for _, s := range a.seeds {
		p, err := a.session.AddPanel(ctx, s.Title())
		if err != nil {
			return fmt.Errorf("seeding panel %q: %w", s.Title(), err)
		}
		if s.Kind() != p.Kind {
			if err := a.session.SetChartKind(ctx, p.ID, s.Kind()); err != nil {
				return fmt.Errorf("seeding panel %q: %w", s.Title(), err)
			}
		}
	}
	a.logger.Info("seeded dashboard", "panel_count", len(a.seeds))
	return nil
}

// Start loads the dashboard and serves it until ctx is cancelled.
//
// While running:
//
//   - The HTTP server serves the UI and API on the configured port
//   - Sample data is regenerated on the refresh interval, if set
//   - A configured [Watcher] reloads the dashboard on outside changes
//   - Event callbacks receive every dashboard change
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start or the watcher fails.
func (a *App) Start(ctx context.Context) error {
	if err := a.Open(ctx); err != nil {
		return err
	}

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	a.logger.Info("dashgrid starting", "store_key", a.store.Key())
	a.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", a.port))

	g, gctx := errgroup.WithContext(ctx)

	srv := server.New(a.session, a.port,
		server.WithAssets(dashboard.Assets),
		server.WithTitle(a.title),
		server.WithLogger(a.logger),
		server.WithWriteLimit(a.writeRate, a.writeBurst),
	)
	if err := srv.Start(gctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if len(a.eventCallbacks) > 0 {
		events := a.session.Subscribe()
		g.Go(func() error {
			defer a.session.Unsubscribe(events)
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					for _, cb := range a.eventCallbacks {
						invokeCallbackSafe(cb, ev, a.logger)
					}
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	if a.watcher != nil {
		g.Go(func() error {
			err := a.watcher.Watch(gctx, a.store.Key(), func() {
				a.logger.Warn("dashboard changed outside this process, reloading",
					"store_key", a.store.Key())
				a.session.Reload(gctx)
			})
			if err != nil {
				return fmt.Errorf("watching dashboard: %w", err)
			}
			return nil
		})
	}

	if a.refreshInterval > 0 {
		a.logger.Info("sample refresh configured", "interval", a.refreshInterval.String())
		scheduler := refresh.NewScheduler(a.session, a.refreshInterval, a.logger)
		g.Go(func() error {
			scheduler.Start(gctx)
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	a.logger.Info("dashgrid stopped")
	return err
}

// invokeCallbackSafe calls an event callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(board.Event), ev board.Event, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event callback panicked",
				"panic", r,
				"event", string(ev.Type),
			)
		}
	}()
	cb(ev)
}
