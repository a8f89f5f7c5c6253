package board

import (
	"sort"
	"strconv"
	"strings"
)

// PanelIDPrefix is the fixed prefix of every panel identifier.
const PanelIDPrefix = "dashboard-item-"

// Sample is one point of a panel's series.
type Sample struct {
	// Label is the category axis value, formatted "H:MM AM".
	Label string `json:"time"`

	// Value is the sample magnitude in [0, 5000).
	Value int `json:"value"`
}

// Panel is one chart tile on the dashboard.
type Panel struct {
	// ID is "dashboard-item-<n>", unique and never reused within a dashboard.
	ID string `json:"id"`

	// Title is the display name. Defaults to "Panel <n>".
	Title string `json:"title"`

	// Kind is the chart style.
	Kind ChartKind `json:"type"`

	// Series is synthetic sample data. It is regenerated on load and never
	// persisted. An empty series renders as "No Data".
	Series []Sample `json:"data,omitempty"`
}

// Placement is a panel's cell within one breakpoint's grid, in column units.
type Placement struct {
	W       int    `json:"w"`
	H       int    `json:"h"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	PanelID string `json:"i"`
}

// Layouts maps a breakpoint name to the placements in that breakpoint.
type Layouts map[string][]Placement

// Dashboard is the full document: panels and their per-breakpoint layouts.
//
// Selected carries the currently viewed or edited panel across navigation.
// It is a panel id rather than a reference, so a removed panel can never be
// reached through it; use [Dashboard.Selection] to resolve it.
type Dashboard struct {
	Panels   map[string]*Panel `json:"items"`
	Layouts  Layouts           `json:"layouts"`
	Selected string            `json:"current,omitempty"`
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		Panels:  make(map[string]*Panel),
		Layouts: make(Layouts),
	}
}

// Panel returns the panel with the given id.
func (d *Dashboard) Panel(id string) (*Panel, bool) {
	p, ok := d.Panels[id]
	return p, ok
}

// Selection resolves Selected. It reports false when nothing is selected or
// when the selected panel no longer exists.
func (d *Dashboard) Selection() (*Panel, bool) {
	if d.Selected == "" {
		return nil, false
	}
	return d.Panel(d.Selected)
}

// PanelIDs returns all panel ids in allocation order.
func (d *Dashboard) PanelIDs() []string {
	ids := make([]string, 0, len(d.Panels))
	for id := range d.Panels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, oki := panelNumber(ids[i])
		nj, okj := panelNumber(ids[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		if oki != okj {
			return oki
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a deep copy of d.
func (d *Dashboard) Clone() *Dashboard {
	cp := &Dashboard{
		Panels:   make(map[string]*Panel, len(d.Panels)),
		Layouts:  d.Layouts.Clone(),
		Selected: d.Selected,
	}
	for id, p := range d.Panels {
		cp.Panels[id] = p.Clone()
	}
	return cp
}

// Clone returns a deep copy of p.
func (p *Panel) Clone() *Panel {
	cp := *p
	if p.Series != nil {
		cp.Series = append([]Sample(nil), p.Series...)
	}
	return &cp
}

// Clone returns a deep copy of l.
func (l Layouts) Clone() Layouts {
	cp := make(Layouts, len(l))
	for name, placements := range l {
		cp[name] = append([]Placement(nil), placements...)
	}
	return cp
}

// panelNumber extracts n from "dashboard-item-<n>".
func panelNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, PanelIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// nextPanelNumber returns max(existing suffix) + 1, or 1 for an empty
// dashboard. Gaps left by removals are not refilled.
func nextPanelNumber(d *Dashboard) int {
	next := 1
	for id := range d.Panels {
		if n, ok := panelNumber(id); ok && n >= next {
			next = n + 1
		}
	}
	return next
}

func panelID(n int) string {
	return PanelIDPrefix + strconv.Itoa(n)
}
