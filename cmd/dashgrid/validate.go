package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a dashgrid configuration file without starting the server.

This command parses the YAML or TOML, expands environment variables,
validates all fields and expands the seed panel grids. It's useful for
CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  dashgrid validate -c dashgrid.yaml
  dashgrid validate --config /etc/dashgrid/dashgrid.toml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seeds, err := config.BuildSeeds(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	refresh := "disabled"
	if cfg.RefreshInterval != 0 {
		refresh = cfg.RefreshInterval.Duration().String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Storage:       %s %s (key %q)\n", cfg.Storage.Driver, cfg.Storage.Path, cfg.Storage.Key)
	fmt.Fprintf(out, "  Refresh:       %s\n", refresh)
	fmt.Fprintf(out, "  Seed panels:   %d direct + %d from grids = %d total\n",
		len(cfg.Panels), len(seeds)-len(cfg.Panels), len(seeds))

	return nil
}
