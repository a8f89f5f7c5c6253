// Package main is the entry point for the dashgrid CLI.
//
// dashgrid can be embedded as a library (SDK) or run as a standalone binary
// with a YAML or TOML configuration. This CLI provides the standalone binary
// and a set of commands that edit the stored dashboard directly.
//
// Usage:
//
//	dashgrid serve -c dashgrid.yaml          # Start the dashboard
//	dashgrid validate -c dashgrid.yaml       # Validate configuration
//	dashgrid panel list                      # List panels
//	dashgrid layout md                       # Preview a breakpoint layout
//	dashgrid export -o board.xlsx            # Export the dashboard
//	dashgrid version                         # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashgrid",
	Short: "A responsive chart dashboard builder",
	Long: `dashgrid is a dashboard builder: a grid of chart panels that can be
added, removed, resized, repositioned and edited.

The dashboard is stored in a key-value backend (a JSON file directory,
SQLite, or memory) and served as a web UI with Server-Sent Events for live
updates. The panel, layout and export commands work on the same store.

Quick start:
  1. Run: dashgrid serve
  2. Open http://localhost:8080 in your browser
  3. Click "Add panel"

Example config:
  title: Operations
  port: 8080
  storage:
    driver: file
    path: ./.dashgrid
  panels:
    - title: Revenue
      kind: bar`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this dashgrid binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dashgrid %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML or TOML config file (defaults apply when omitted)")
	rootCmd.AddCommand(versionCmd)
}
