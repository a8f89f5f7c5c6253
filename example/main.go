package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/dashgrid"
	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/kv"
)

func main() {
	// the dashboard lives in ./demo-data/dashboard.json; edit it by hand while
	// the demo runs and the page reloads
	backend, err := kv.NewFileStore("demo-data")
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	// grid API: 2 regions × 2 metrics = 4 panels from one declaration
	seeds, err := dashgrid.NewPanelGrid("{{.region}} {{.metric}}",
		map[string][]string{
			"region": {"eu", "us"},
			"metric": {"latency", "errors"},
		},
		board.ChartArea,
	)
	if err != nil {
		slog.Error("failed to create panel grid", "error", err)
		os.Exit(1)
	}

	revenue, _ := dashgrid.NewPanelSeed("Revenue", board.ChartBar)
	seeds = append(seeds, revenue)

	app, err := dashgrid.New(
		dashgrid.WithTitle("Dashgrid Demo"),
		dashgrid.WithKV(backend),
		dashgrid.WithWatcher(backend),
		dashgrid.WithPanels(seeds...),
		dashgrid.WithRefreshInterval(3*time.Second),
		dashgrid.WithPort(8080),
		dashgrid.WithEventCallback(func(ev board.Event) {
			if ev.Type != board.EventSeries {
				slog.Info("dashboard changed", "type", string(ev.Type), "panel_id", ev.PanelID)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create dashgrid", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Dashgrid Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Panels:                                             ║")
	fmt.Println("  ║   • 4 area charts (2 regions × 2 metrics via Grid)    ║")
	fmt.Println("  ║   • 1 bar chart                                       ║")
	fmt.Println("  ║   • sample data refreshed every 3s                    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		slog.Error("dashgrid error", "error", err)
		os.Exit(1)
	}
}
