package config

import (
	"fmt"

	"github.com/jpalmerr/dashgrid"
	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/kv"
)

// Backend is an opened storage backend.
type Backend struct {
	// KV is the backend the dashboard is stored in.
	KV board.KV

	// Watcher is set when the backend can report outside writes.
	Watcher dashgrid.Watcher

	close func() error
}

// Close releases the backend. It is safe to call on a nil Backend.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the storage backend the configuration selects.
func OpenBackend(cfg StorageConfig) (*Backend, error) {
	switch cfg.Driver {
	case DriverMemory:
		return &Backend{KV: kv.NewMemoryStore()}, nil

	case DriverFile, "":
		fs, err := kv.NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}
		return &Backend{KV: fs, Watcher: fs}, nil

	case DriverSQLite:
		db, err := kv.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return &Backend{KV: db, close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// BuildSeeds converts the configured panels and grids into seed panels.
//
// Direct panels come first, then each grid in order.
func BuildSeeds(cfg *Config) ([]dashgrid.PanelSeed, error) {
	var seeds []dashgrid.PanelSeed

	for i, pc := range cfg.Panels {
		seed, err := dashgrid.NewPanelSeed(pc.Title, board.ChartKind(pc.Kind))
		if err != nil {
			return nil, fmt.Errorf("panels[%d]: %w", i, err)
		}
		seeds = append(seeds, seed)
	}

	for i, gc := range cfg.Grids {
		gridSeeds, err := dashgrid.NewPanelGrid(gc.TitleTemplate, gc.Dimensions, board.ChartKind(gc.Kind))
		if err != nil {
			return nil, fmt.Errorf("grids[%d]: %w", i, err)
		}
		seeds = append(seeds, gridSeeds...)
	}

	return seeds, nil
}

// BuildOptions converts parsed configuration into App options.
//
// The returned Backend holds the opened storage and must be closed once the
// App has stopped. Logging is left to the caller.
func BuildOptions(cfg *Config) ([]dashgrid.Option, *Backend, error) {
	seeds, err := BuildSeeds(cfg)
	if err != nil {
		return nil, nil, err
	}

	backend, err := OpenBackend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	opts := []dashgrid.Option{
		dashgrid.WithPort(cfg.Port),
		dashgrid.WithKV(backend.KV),
		dashgrid.WithStoreKey(cfg.Storage.Key),
		dashgrid.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		dashgrid.WithPanels(seeds...),
	}
	if cfg.Title != "" {
		opts = append(opts, dashgrid.WithTitle(cfg.Title))
	}

	if cfg.WriteRate < 0 {
		opts = append(opts, dashgrid.WithWriteRate(0, 0))
	} else {
		opts = append(opts, dashgrid.WithWriteRate(cfg.WriteRate, cfg.WriteBurst))
	}

	if cfg.Watch && backend.Watcher != nil {
		opts = append(opts, dashgrid.WithWatcher(backend.Watcher))
	}

	return opts, backend, nil
}
