package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/dashgrid/board"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatXLSX}
}

// ParseFormat parses a format name or file extension ("yml" is accepted
// for YAML).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, yaml or xlsx)", s)
	}
}

// Document is the export form of a dashboard. Panels are listed in
// allocation order so output is stable across runs.
type Document struct {
	Panels   []Panel                `json:"panels" yaml:"panels"`
	Layouts  map[string][]Placement `json:"layouts" yaml:"layouts"`
	Selected string                 `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Panel is one exported panel with its sample data and summary.
type Panel struct {
	ID      string        `json:"id" yaml:"id"`
	Title   string        `json:"title" yaml:"title"`
	Kind    string        `json:"kind" yaml:"kind"`
	Summary board.Summary `json:"summary" yaml:"summary"`
	Series  []Sample      `json:"series,omitempty" yaml:"series,omitempty"`
}

// Sample is one exported data point.
type Sample struct {
	Time  string `json:"time" yaml:"time"`
	Value int    `json:"value" yaml:"value"`
}

// Placement is one exported grid cell.
type Placement struct {
	Panel string `json:"panel" yaml:"panel"`
	X     int    `json:"x" yaml:"x"`
	Y     int    `json:"y" yaml:"y"`
	W     int    `json:"w" yaml:"w"`
	H     int    `json:"h" yaml:"h"`
}

// NewDocument builds the export form of d.
func NewDocument(d *board.Dashboard) Document {
	doc := Document{
		Panels:   make([]Panel, 0, len(d.Panels)),
		Layouts:  make(map[string][]Placement, len(d.Layouts)),
		Selected: d.Selected,
	}

	for _, id := range d.PanelIDs() {
		p := d.Panels[id]
		ep := Panel{
			ID:      p.ID,
			Title:   p.Title,
			Kind:    p.Kind.String(),
			Summary: board.Summarize(p.Series),
		}
		for _, s := range p.Series {
			ep.Series = append(ep.Series, Sample{Time: s.Label, Value: s.Value})
		}
		doc.Panels = append(doc.Panels, ep)
	}

	for _, name := range board.BreakpointNames() {
		layout, ok := d.Layouts[name]
		if !ok {
			continue
		}
		placements := make([]Placement, 0, len(layout))
		for _, pl := range layout {
			placements = append(placements, Placement{Panel: pl.PanelID, X: pl.X, Y: pl.Y, W: pl.W, H: pl.H})
		}
		doc.Layouts[name] = placements
	}

	return doc
}

// Write encodes d to w in the given format.
func Write(w io.Writer, d *board.Dashboard, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(d)); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(d)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, d)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
