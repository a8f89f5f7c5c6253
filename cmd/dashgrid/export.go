package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid/internal/export"
)

// exportCmd writes the stored dashboard in a portable format.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dashboard as JSON, YAML or XLSX",
	Long: `Export the stored dashboard with freshly generated sample data.

The format is taken from --format, or from the extension of --output.
XLSX exports contain a summary sheet, one sheet per panel with a native
chart of the panel's kind, and a sheet of every breakpoint layout.

Example:
  dashgrid export                       # JSON to stdout
  dashgrid export --format yaml
  dashgrid export -o dashboard.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", "", "json, yaml or xlsx (default from --output, else json)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format := export.FormatJSON
	switch {
	case formatFlag != "":
		format, err = export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
	case output != "":
		format, err = export.ParseFormat(filepath.Ext(output))
		if err != nil {
			return fmt.Errorf("cannot infer format from %q, use --format: %w", output, err)
		}
	}

	if format == export.FormatXLSX && output == "" {
		return fmt.Errorf("xlsx exports need --output")
	}

	session, closeFn, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}

	if output == "" {
		return export.Write(cmd.OutOrStdout(), d, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := export.Write(w, d, format); err != nil {
		return fmt.Errorf("exporting %s: %w", strings.ToUpper(string(format)), err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d panels to %s\n", len(d.Panels), output)
	return nil
}
