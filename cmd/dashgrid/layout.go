package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/internal/render"
)

// layoutCmd previews a breakpoint layout in the terminal.
var layoutCmd = &cobra.Command{
	Use:   "layout [breakpoint]",
	Short: "Preview the panel layout of a breakpoint",
	Long: `Draw the stored layout of one breakpoint as boxes in the terminal.

The breakpoint is chosen by name (lg, md, sm, xs, xxs) or by a viewport
width in pixels with --width. Without either, every breakpoint is drawn.

Example:
  dashgrid layout md
  dashgrid layout --width 1100
  dashgrid layout sm --cell-width 16`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().Int("width", -1, "viewport width in pixels used to pick the breakpoint")
	layoutCmd.Flags().Int("cell-width", render.DefaultCellWidth, "terminal columns per grid column")
	layoutCmd.Flags().Int("cell-height", render.DefaultCellHeight, "terminal lines per grid row")
}

func runLayout(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	if len(args) == 1 && width >= 0 {
		return fmt.Errorf("give either a breakpoint or --width, not both")
	}

	var bps []board.Breakpoint
	switch {
	case len(args) == 1:
		bp, ok := board.LookupBreakpoint(strings.ToLower(args[0]))
		if !ok {
			return fmt.Errorf("unknown breakpoint %q (expected one of %s)",
				args[0], strings.Join(board.BreakpointNames(), ", "))
		}
		bps = []board.Breakpoint{bp}
	case width >= 0:
		bps = []board.Breakpoint{board.BreakpointFor(width)}
	default:
		bps = board.Breakpoints()
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

	cellW, _ := cmd.Flags().GetInt("cell-width")
	cellH, _ := cmd.Flags().GetInt("cell-height")
	out := cmd.OutOrStdout()
	opts := []render.Option{
		render.WithRenderer(lipgloss.NewRenderer(out)),
		render.WithCellSize(cellW, cellH),
	}

	for i, bp := range bps {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, render.Layout(d, bp, opts...))
	}
	return nil
}
