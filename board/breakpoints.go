package board

// Breakpoint is a named responsive width tier with its own grid.
type Breakpoint struct {
	// Name is one of lg, md, sm, xs, xxs.
	Name string `json:"name"`

	// MinWidth is the smallest viewport width in pixels using this tier.
	MinWidth int `json:"min_width"`

	// Columns is the number of grid columns.
	Columns int `json:"cols"`

	// UnitW and UnitH are the default size of a newly placed panel.
	UnitW int `json:"unit_w"`
	UnitH int `json:"unit_h"`
}

// ItemsPerRow is the number of default-sized panels that fit in one row.
func (b Breakpoint) ItemsPerRow() int {
	if b.UnitW <= 0 {
		return b.Columns
	}
	n := b.Columns / b.UnitW
	if n < 1 {
		return 1
	}
	return n
}

// breakpoints is ordered widest first. Never hand it out directly.
var breakpoints = [...]Breakpoint{
	{Name: "lg", MinWidth: 1280, Columns: 8, UnitW: 2, UnitH: 2},
	{Name: "md", MinWidth: 1080, Columns: 6, UnitW: 2, UnitH: 2},
	{Name: "sm", MinWidth: 320, Columns: 3, UnitW: 1, UnitH: 1},
	{Name: "xs", MinWidth: 240, Columns: 2, UnitW: 1, UnitH: 1},
	{Name: "xxs", MinWidth: 0, Columns: 2, UnitW: 1, UnitH: 1},
}

// Breakpoints returns a copy of the breakpoint table, widest first.
func Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(breakpoints))
	copy(out, breakpoints[:])
	return out
}

// BreakpointNames returns the breakpoint names, widest first.
func BreakpointNames() []string {
	names := make([]string, len(breakpoints))
	for i, b := range breakpoints {
		names[i] = b.Name
	}
	return names
}

// LookupBreakpoint returns the breakpoint with the given name.
func LookupBreakpoint(name string) (Breakpoint, bool) {
	for _, b := range breakpoints {
		if b.Name == name {
			return b, true
		}
	}
	return Breakpoint{}, false
}

// BreakpointWidths returns breakpoint name to minimum width in pixels.
func BreakpointWidths() map[string]int {
	m := make(map[string]int, len(breakpoints))
	for _, b := range breakpoints {
		m[b.Name] = b.MinWidth
	}
	return m
}

// BreakpointColumns returns breakpoint name to column count.
func BreakpointColumns() map[string]int {
	m := make(map[string]int, len(breakpoints))
	for _, b := range breakpoints {
		m[b.Name] = b.Columns
	}
	return m
}

// BreakpointFor returns the widest breakpoint whose minimum width does not
// exceed width. Negative widths map to the narrowest tier.
func BreakpointFor(width int) Breakpoint {
	for _, b := range breakpoints {
		if width >= b.MinWidth {
			return b
		}
	}
	return breakpoints[len(breakpoints)-1]
}
