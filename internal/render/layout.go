package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/dashgrid/board"
)

const (
	// DefaultCellWidth is the number of terminal columns per grid column.
	DefaultCellWidth = 12

	// DefaultCellHeight is the number of terminal lines per grid row.
	DefaultCellHeight = 4

	minCellWidth  = 6
	minCellHeight = 4
)

// Option configures a layout rendering.
type Option func(*options)

type options struct {
	renderer   *lipgloss.Renderer
	cellWidth  int
	cellHeight int
}

// WithRenderer sets the lipgloss renderer, which decides the color profile.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithCellSize sets how many terminal columns and lines one grid unit
// occupies. Values below the minimum are raised to it.
func WithCellSize(width, height int) Option {
	return func(o *options) {
		o.cellWidth = max(width, minCellWidth)
		o.cellHeight = max(height, minCellHeight)
	}
}

// Layout draws the panels of one breakpoint as boxes on a character grid,
// positioned and sized by their placements. Each box shows the panel title
// and chart kind. Placements of unknown panels are drawn with their id.
func Layout(d *board.Dashboard, bp board.Breakpoint, opts ...Option) string {
	o := options{
		renderer:   lipgloss.DefaultRenderer(),
		cellWidth:  DefaultCellWidth,
		cellHeight: DefaultCellHeight,
	}
	for _, opt := range opts {
		opt(&o)
	}

	header := o.renderer.NewStyle().Bold(true).Render(
		fmt.Sprintf("%s · %d columns · min width %dpx", bp.Name, bp.Columns, bp.MinWidth))

	layout := d.Layouts[bp.Name]
	if len(layout) == 0 {
		empty := o.renderer.NewStyle().Faint(true).Render("(no panels)")
		return lipgloss.JoinVertical(lipgloss.Left, header, empty)
	}

	cols := bp.Columns
	rows := 0
	for _, pl := range layout {
		cols = max(cols, pl.X+pl.W)
		rows = max(rows, pl.Y+pl.H)
	}

	c := newCanvas(cols*o.cellWidth, rows*o.cellHeight)
	for _, pl := range layout {
		box := panelBox(o, d, pl)
		c.paste(pl.X*o.cellWidth, pl.Y*o.cellHeight, box)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, c.String())
}

// panelBox renders one placement as a bordered box of exactly its cell size.
func panelBox(o options, d *board.Dashboard, pl board.Placement) string {
	w := pl.W * o.cellWidth
	h := pl.H * o.cellHeight
	inner := w - 2

	title, kind := pl.PanelID, "?"
	if p, ok := d.Panel(pl.PanelID); ok {
		title, kind = p.Title, p.Kind.String()
	}
	if d.Selected == pl.PanelID {
		title = "* " + title
	}

	// box borders are drawn without color; the canvas pastes runes
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(inner).
		Height(h - 2).
		MaxWidth(w).
		MaxHeight(h)

	return style.Render(truncate(title, inner) + "\n" + truncate(kind, inner))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// canvas is a fixed-size grid of runes that boxes are pasted onto.
type canvas struct {
	cells [][]rune
}

func newCanvas(width, height int) *canvas {
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", width))
	}
	return &canvas{cells: cells}
}

// paste copies block onto the canvas with its top-left corner at (x, y).
// Anything outside the canvas is clipped.
func (c *canvas) paste(x, y int, block string) {
	for dy, line := range strings.Split(block, "\n") {
		row := y + dy
		if row < 0 || row >= len(c.cells) {
			continue
		}
		for dx, r := range []rune(line) {
			col := x + dx
			if col < 0 || col >= len(c.cells[row]) {
				continue
			}
			c.cells[row][col] = r
		}
	}
}

func (c *canvas) String() string {
	lines := make([]string, len(c.cells))
	for i, row := range c.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
