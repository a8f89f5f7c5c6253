package dashgrid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/jpalmerr/dashgrid/board"
)

// PanelSeed describes a panel created when the stored dashboard is empty.
//
// PanelSeed is immutable after creation. Use [NewPanelSeed] for one panel
// or [NewPanelGrid] to expand a title template over dimension values.
type PanelSeed struct {
	title string
	kind  board.ChartKind
}

// NewPanelSeed creates a [PanelSeed]. An empty title gets the default
// "Panel <n>" when the panel is added. An empty kind means line.
//
// Returns an error if kind is not a known chart kind.
func NewPanelSeed(title string, kind board.ChartKind) (PanelSeed, error) {
	if kind == "" {
		kind = board.ChartLine
	}
	if !kind.Valid() {
		return PanelSeed{}, fmt.Errorf("panel %q: %w: %q", title, board.ErrUnknownChartKind, kind)
	}
	return PanelSeed{title: strings.TrimSpace(title), kind: kind}, nil
}

// Title returns the seed's panel title.
func (s PanelSeed) Title() string {
	return s.title
}

// Kind returns the seed's chart kind.
func (s PanelSeed) Kind() board.ChartKind {
	return s.kind
}

// NewPanelGrid creates one seed per combination of dimension values by
// cartesian product, naming each panel from a text/template.
//
// Missing template keys cause an error (fail-fast). Combinations are
// produced in sorted-key order with values in their given order, so the
// panel order is deterministic.
//
// Example:
//
//	seeds, err := NewPanelGrid("{{.region}} latency ({{.env}})",
//	    map[string][]string{
//	        "env":    {"prod", "staging"},
//	        "region": {"eu", "us"},
//	    },
//	    board.ChartArea,
//	)
//	// Returns 4 seeds: "eu latency (prod)", "us latency (prod)", ...
func NewPanelGrid(titleTemplate string, dimensions map[string][]string, kind board.ChartKind) ([]PanelSeed, error) {
	if strings.TrimSpace(titleTemplate) == "" {
		return nil, errors.New("title template cannot be empty")
	}
	if len(dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}
	for name, values := range dimensions {
		if len(values) == 0 {
			return nil, fmt.Errorf("dimension %q has no values", name)
		}
		seen := make(map[string]struct{}, len(values))
		for _, v := range values {
			if _, dup := seen[v]; dup {
				return nil, fmt.Errorf("dimension %q has duplicate value %q", name, v)
			}
			seen[v] = struct{}{}
		}
	}

	tmpl, err := template.New("title").Option("missingkey=error").Parse(titleTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid title template: %w", err)
	}

	combinations := cartesianProduct(dimensions)
	seeds := make([]PanelSeed, 0, len(combinations))
	for _, combo := range combinations {
		title, err := executeTemplate(tmpl, combo)
		if err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}
		seed, err := NewPanelSeed(title, kind)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 1
	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
		total *= len(dims[k])
	}

	result := make([]map[string]string, 0, total)

	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
