// Package dashgrid serves an editable dashboard of chart panels laid out on
// a responsive grid.
//
// The dashboard document (panels plus one layout per breakpoint) lives in
// package [board]; this package wires it to a persistent backend, an HTTP
// server with a browser UI, and optional background work.
//
// # Quick Start
//
// Serve a dashboard persisted to a directory, with graceful shutdown:
//
//	backend, _ := kv.NewFileStore(".dashgrid")
//	app, _ := dashgrid.New(dashgrid.WithKV(backend))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	app.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// dashgrid uses the functional options pattern for configuration:
//
//	app, err := dashgrid.New(
//	    dashgrid.WithKV(backend),
//	    dashgrid.WithWatcher(backend),
//	    dashgrid.WithPort(9090),
//	    dashgrid.WithTitle("Ops"),
//	    dashgrid.WithRefreshInterval(5 * time.Second),
//	)
//
// Panels can be seeded on first run, singly or expanded from a template:
//
//	seeds, err := dashgrid.NewPanelGrid("{{.region}} traffic",
//	    map[string][]string{"region": {"eu", "us"}}, board.ChartBar)
//	app, err := dashgrid.New(dashgrid.WithPanels(seeds...))
//
// # Architecture
//
// dashgrid consists of several packages:
//
//   - board: the dashboard document, placement and persistence rules
//   - kv: memory, JSON file and SQLite key-value backends
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/refresh: periodic sample data refresh
//   - internal/export: JSON, YAML and XLSX export
//   - internal/render: terminal layout preview
//   - dashboard: embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package dashgrid
