package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/config"
)

// loadConfig reads the --config file, or returns the defaults when the flag
// is not set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg, err := config.Parse(nil)
		if err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openSession opens the configured backend and loads the dashboard.
// The returned function closes the backend.
func openSession(ctx context.Context, cmd *cobra.Command) (*board.Session, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	backend, err := config.OpenBackend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	store := board.NewStore(backend.KV,
		board.WithKey(cfg.Storage.Key),
		board.WithLogger(newLogger(os.Stderr, cfg.Log)),
	)
	session := board.NewSession(store)
	session.Open(ctx)

	return session, func() { _ = backend.Close() }, nil
}

// resolvePanel finds the panel a command argument refers to. It accepts a
// full id, a panel number or a fuzzy title match, in that order.
func resolvePanel(d *board.Dashboard, ref string) (*board.Panel, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty panel reference", board.ErrPanelNotFound)
	}

	if p, ok := d.Panel(ref); ok {
		return p, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if p, ok := d.Panel(board.PanelIDPrefix + strconv.Itoa(n)); ok {
			return p, nil
		}
	}

	ids := d.PanelIDs()
	titles := make([]string, len(ids))
	for i, id := range ids {
		titles[i] = d.Panels[id].Title
	}

	matches := fuzzy.Find(ref, titles)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no panel matches %q", board.ErrPanelNotFound, ref)
	}
	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		candidates := make([]string, 0, len(matches))
		for _, m := range matches {
			if m.Score != matches[0].Score {
				break
			}
			candidates = append(candidates, fmt.Sprintf("%s (%s)", ids[m.Index], m.Str))
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(candidates, ", "))
	}

	p, _ := d.Panel(ids[matches[0].Index])
	return p, nil
}
