package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/dashgrid/board"
)

// panelCmd groups the commands that edit panels in the stored dashboard.
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "List and edit dashboard panels",
	Long: `List and edit the panels of the stored dashboard.

Panels are referred to by id (dashboard-item-3), by number (3) or by a
fuzzy match on their title ("rev" finds "Revenue"). Changes are written to
the configured storage; a running server that watches the file backend
picks them up.`,
}

var panelListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List panels",
	Args:    cobra.NoArgs,
	RunE:    runPanelList,
}

var panelAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a panel",
	Long: `Add a panel to the end of every breakpoint layout.

Without a title the panel is named "Panel N" after its number.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPanelAdd,
}

var panelRemoveCmd = &cobra.Command{
	Use:     "remove <panel>",
	Aliases: []string{"rm"},
	Short:   "Remove a panel",
	Args:    cobra.ExactArgs(1),
	RunE:    runPanelRemove,
}

var panelShowCmd = &cobra.Command{
	Use:   "show <panel>",
	Short: "Show a panel and a summary of its sample data",
	Args:  cobra.ExactArgs(1),
	RunE:  runPanelShow,
}

var panelRenameCmd = &cobra.Command{
	Use:   "rename <panel> <title>",
	Short: "Change a panel's title",
	Args:  cobra.ExactArgs(2),
	RunE:  runPanelRename,
}

var panelKindCmd = &cobra.Command{
	Use:   "kind <panel> <line|pie|area|bar>",
	Short: "Change a panel's chart kind",
	Args:  cobra.ExactArgs(2),
	RunE:  runPanelKind,
}

var panelSelectCmd = &cobra.Command{
	Use:   "select [panel]",
	Short: "Select a panel for the detail view, or clear the selection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPanelSelect,
}

func init() {
	rootCmd.AddCommand(panelCmd)
	panelCmd.AddCommand(panelListCmd, panelAddCmd, panelRemoveCmd, panelShowCmd,
		panelRenameCmd, panelKindCmd, panelSelectCmd)

	panelAddCmd.Flags().StringP("kind", "k", "", "chart kind: line, pie, area or bar (default line)")
	panelSelectCmd.Flags().Bool("clear", false, "clear the selection")
}

// panelStyles renders panel listings for one output.
type panelStyles struct {
	header   lipgloss.Style
	selected lipgloss.Style
	faint    lipgloss.Style
}

func newPanelStyles(w io.Writer) panelStyles {
	r := lipgloss.NewRenderer(w)
	return panelStyles{
		header:   r.NewStyle().Bold(true),
		selected: r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		faint:    r.NewStyle().Faint(true),
	}
}

func runPanelList(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newPanelStyles(out)

	ids := d.PanelIDs()
	if len(ids) == 0 {
		fmt.Fprintln(out, st.faint.Render("(no panels)"))
		return nil
	}

	idWidth, titleWidth := len("ID"), len("TITLE")
	for _, id := range ids {
		idWidth = max(idWidth, len(id))
		titleWidth = max(titleWidth, lipgloss.Width(d.Panels[id].Title))
	}
	row := func(mark, id, title, kind string) string {
		return fmt.Sprintf("%s %-*s  %-*s  %s", mark, idWidth, id, titleWidth, title, kind)
	}

	fmt.Fprintln(out, st.header.Render(row(" ", "ID", "TITLE", "KIND")))
	for _, id := range ids {
		p := d.Panels[id]
		if id == d.Selected {
			fmt.Fprintln(out, st.selected.Render(row("*", id, p.Title, p.Kind.String())))
			continue
		}
		fmt.Fprintln(out, row(" ", id, p.Title, p.Kind.String()))
	}
	return nil
}

func runPanelAdd(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	kind := board.ChartLine
	if kindFlag != "" {
		k, err := board.ParseChartKind(strings.ToLower(kindFlag))
		if err != nil {
			return err
		}
		kind = k
	}

	var title string
	if len(args) == 1 {
		title = args[0]
	}

	ctx := cmd.Context()
	session, closeFn, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := session.AddPanel(ctx, title)
	if err != nil {
		return fmt.Errorf("adding panel: %w", err)
	}
	if kind != p.Kind {
		if err := session.SetChartKind(ctx, p.ID, kind); err != nil {
			return fmt.Errorf("setting chart kind: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %s %q (%s)\n", p.ID, p.Title, kind)
	return nil
}

func runPanelRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, closeFn, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}
	p, err := resolvePanel(d, args[0])
	if err != nil {
		return err
	}

	if err := session.RemovePanel(ctx, p.ID); err != nil {
		return fmt.Errorf("removing panel: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s %q\n", p.ID, p.Title)
	return nil
}

func runPanelShow(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}
	p, err := resolvePanel(d, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newPanelStyles(out)
	sum := board.Summarize(p.Series)

	fmt.Fprintln(out, st.header.Render(p.Title))
	fmt.Fprintf(out, "  ID:       %s\n", p.ID)
	fmt.Fprintf(out, "  Kind:     %s\n", p.Kind)
	fmt.Fprintf(out, "  Selected: %t\n", p.ID == d.Selected)
	for _, bp := range board.Breakpoints() {
		for _, pl := range d.Layouts[bp.Name] {
			if pl.PanelID == p.ID {
				fmt.Fprintf(out, "  %-9s x=%d y=%d w=%d h=%d\n", bp.Name+":", pl.X, pl.Y, pl.W, pl.H)
			}
		}
	}
	fmt.Fprintf(out, "  Samples:  %d (min %.0f, max %.0f, mean %.1f, stddev %.1f)\n",
		sum.Count, sum.Min, sum.Max, sum.Mean, sum.StdDev)
	fmt.Fprintln(out, st.faint.Render("  sample data is regenerated on every load"))
	return nil
}

func runPanelRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, closeFn, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}
	p, err := resolvePanel(d, args[0])
	if err != nil {
		return err
	}

	if err := session.RenamePanel(ctx, p.ID, args[1]); err != nil {
		return fmt.Errorf("renaming panel: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "renamed %s %q -> %q\n", p.ID, p.Title, args[1])
	return nil
}

func runPanelKind(cmd *cobra.Command, args []string) error {
	kind, err := board.ParseChartKind(strings.ToLower(args[1]))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, closeFn, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := session.Snapshot()
	if err != nil {
		return err
	}
	p, err := resolvePanel(d, args[0])
	if err != nil {
		return err
	}

	if err := session.SetChartKind(ctx, p.ID, kind); err != nil {
		return fmt.Errorf("setting chart kind: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now a %s chart\n", p.ID, kind)
	return nil
}

func runPanelSelect(cmd *cobra.Command, args []string) error {
	clearSel, _ := cmd.Flags().GetBool("clear")
	if clearSel == (len(args) == 1) {
		return fmt.Errorf("give either a panel or --clear")
	}

	ctx := cmd.Context()
	session, closeFn, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if clearSel {
		if err := session.ClearSelection(ctx); err != nil {
			return fmt.Errorf("clearing selection: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "selection cleared")
		return nil
	}

	d, err := session.Snapshot()
	if err != nil {
		return err
	}
	p, err := resolvePanel(d, args[0])
	if err != nil {
		return err
	}
	if err := session.Select(ctx, p.ID); err != nil {
		return fmt.Errorf("selecting panel: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "selected %s %q\n", p.ID, p.Title)
	return nil
}
