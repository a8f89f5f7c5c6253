package dashgrid

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jpalmerr/dashgrid/board"
	"github.com/jpalmerr/dashgrid/kv"
)

func TestNewPanelSeed(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		kind     board.ChartKind
		wantKind board.ChartKind
		wantErr  error
	}{
		{"explicit kind", "Revenue", board.ChartBar, board.ChartBar, nil},
		{"empty kind means line", "Revenue", "", board.ChartLine, nil},
		{"empty title allowed", "", board.ChartPie, board.ChartPie, nil},
		{"unknown kind", "Revenue", "donut", "", board.ErrUnknownChartKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPanelSeed(tt.title, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewPanelSeed() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && s.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", s.Kind(), tt.wantKind)
			}
		})
	}
}

func TestNewPanelGrid(t *testing.T) {
	seeds, err := NewPanelGrid("{{.region}} latency ({{.env}})",
		map[string][]string{
			"env":    {"prod", "staging"},
			"region": {"eu", "us"},
		},
		board.ChartArea,
	)
	if err != nil {
		t.Fatalf("NewPanelGrid() error = %v", err)
	}

	var got []string
	for _, s := range seeds {
		got = append(got, s.Title())
		if s.Kind() != board.ChartArea {
			t.Errorf("Kind() = %q, want %q", s.Kind(), board.ChartArea)
		}
	}
	want := []string{
		"eu latency (prod)",
		"us latency (prod)",
		"eu latency (staging)",
		"us latency (staging)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestNewPanelGrid_Errors(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		dims map[string][]string
		kind board.ChartKind
	}{
		{"empty template", "  ", map[string][]string{"a": {"1"}}, ""},
		{"no dimensions", "{{.a}}", nil, ""},
		{"empty dimension", "{{.a}}", map[string][]string{"a": {}}, ""},
		{"duplicate value", "{{.a}}", map[string][]string{"a": {"1", "1"}}, ""},
		{"bad template", "{{.a", map[string][]string{"a": {"1"}}, ""},
		{"missing key", "{{.b}}", map[string][]string{"a": {"1"}}, ""},
		{"bad kind", "{{.a}}", map[string][]string{"a": {"1"}}, "donut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPanelGrid(tt.tmpl, tt.dims, tt.kind); err == nil {
				t.Error("NewPanelGrid() expected error, got nil")
			}
		})
	}
}

func TestCartesianProduct(t *testing.T) {
	got := cartesianProduct(map[string][]string{"x": {"a", "b"}, "y": {"1", "2"}})
	want := []map[string]string{
		{"x": "a", "y": "1"},
		{"x": "a", "y": "2"},
		{"x": "b", "y": "1"},
		{"x": "b", "y": "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cartesianProduct() = %v, want %v", got, want)
	}

	if got := cartesianProduct(nil); got != nil {
		t.Errorf("cartesianProduct(nil) = %v, want nil", got)
	}
}

func TestOpen_SeedsEmptyDashboard(t *testing.T) {
	ctx := context.Background()
	revenue, _ := NewPanelSeed("Revenue", board.ChartBar)
	blank, _ := NewPanelSeed("", "")

	backend := kv.NewMemoryStore()
	app, err := New(WithKV(backend), WithPanels(revenue, blank))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := app.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	d, err := app.Session().Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Panels) != 2 {
		t.Fatalf("len(Panels) = %d, want 2", len(d.Panels))
	}
	if p := d.Panels["dashboard-item-1"]; p.Title != "Revenue" || p.Kind != board.ChartBar {
		t.Errorf("panel 1 = %+v", p)
	}
	if p := d.Panels["dashboard-item-2"]; p.Title != "Panel 2" || p.Kind != board.ChartLine {
		t.Errorf("panel 2 = %+v", p)
	}

	// a second app over the same backend finds panels and does not seed again
	again, err := New(WithKV(backend), WithPanels(revenue))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := again.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	d, _ = again.Session().Snapshot()
	if len(d.Panels) != 2 {
		t.Errorf("len(Panels) after reopen = %d, want 2", len(d.Panels))
	}
}
