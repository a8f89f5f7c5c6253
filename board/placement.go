package board

// nextPlacement computes the default cell for a new panel appended to
// layout in breakpoint b.
//
// The policy is greedy row fill: the target row is derived from how many
// placements already exist, and the panel goes to the right of the
// rightmost cell already occupying that row. Removals are not repacked, so
// deletions can leave gaps.
//
// Example (lg, 8 columns, 2x2 unit, 4 per row):
//
//	panels 1..5 -> x: 0,2,4,6,0  y: 0,0,0,0,2
func nextPlacement(layout []Placement, b Breakpoint, id string) Placement {
	p := Placement{W: b.UnitW, H: b.UnitH, PanelID: id}
	if len(layout) == 0 {
		return p
	}

	p.Y = (len(layout) / b.ItemsPerRow()) * b.UnitH

	for _, existing := range layout {
		if existing.Y != p.Y {
			continue
		}
		if right := existing.X + existing.W; right > p.X {
			p.X = right
		}
	}
	return p
}

// placePanel appends a default placement for id in every breakpoint.
func placePanel(d *Dashboard, id string) {
	if d.Layouts == nil {
		d.Layouts = make(Layouts)
	}
	for _, b := range breakpoints {
		layout := d.Layouts[b.Name]
		d.Layouts[b.Name] = append(layout, nextPlacement(layout, b, id))
	}
}

// unplacePanel removes every placement referencing id.
func unplacePanel(d *Dashboard, id string) {
	for name, layout := range d.Layouts {
		kept := layout[:0:0]
		for _, p := range layout {
			if p.PanelID != id {
				kept = append(kept, p)
			}
		}
		d.Layouts[name] = kept
	}
}

// sanitizeLayouts returns a copy of layouts containing only known
// breakpoints and placements whose panel exists in panels. Sizes are
// clamped to at least one cell and coordinates to at least zero.
// The second result is the number of placements dropped.
func sanitizeLayouts(layouts Layouts, panels map[string]*Panel) (Layouts, int) {
	clean := make(Layouts, len(layouts))
	dropped := 0

	for name, layout := range layouts {
		if _, ok := LookupBreakpoint(name); !ok {
			dropped += len(layout)
			continue
		}

		kept := make([]Placement, 0, len(layout))
		seen := make(map[string]struct{}, len(layout))
		for _, p := range layout {
			if _, ok := panels[p.PanelID]; !ok {
				dropped++
				continue
			}
			// one cell per panel per breakpoint; first one wins
			if _, dup := seen[p.PanelID]; dup {
				dropped++
				continue
			}
			seen[p.PanelID] = struct{}{}
			kept = append(kept, clampPlacement(p))
		}
		clean[name] = kept
	}

	return clean, dropped
}

func clampPlacement(p Placement) Placement {
	p.W = max(p.W, 1)
	p.H = max(p.H, 1)
	p.X = max(p.X, 0)
	p.Y = max(p.Y, 0)
	return p
}
