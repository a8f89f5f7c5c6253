package board

import (
	"errors"
	"math"
	"testing"
)

func TestDashboard_PanelIDsOrder(t *testing.T) {
	d := NewDashboard()
	for _, id := range []string{"dashboard-item-10", "dashboard-item-2", "zeta", "dashboard-item-1", "alpha"} {
		d.Panels[id] = &Panel{ID: id}
	}

	got := d.PanelIDs()
	want := []string{"dashboard-item-1", "dashboard-item-2", "dashboard-item-10", "alpha", "zeta"}

	if len(got) != len(want) {
		t.Fatalf("PanelIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PanelIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPanelNumber(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"dashboard-item-1", 1, true},
		{"dashboard-item-42", 42, true},
		{"dashboard-item-0", 0, false},
		{"dashboard-item--3", 0, false},
		{"dashboard-item-", 0, false},
		{"dashboard-item-x", 0, false},
		{"panel-1", 0, false},
	}

	for _, tt := range tests {
		got, ok := panelNumber(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("panelNumber(%q) = %d, %v; want %d, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPanel_CloneCopiesSeries(t *testing.T) {
	p := &Panel{ID: "a", Series: []Sample{{Label: "1:1 AM", Value: 1}}}
	cp := p.Clone()
	cp.Series[0].Value = 2

	if p.Series[0].Value != 1 {
		t.Errorf("original series mutated through clone")
	}
}

func TestParseChartKind(t *testing.T) {
	for _, k := range ChartKinds() {
		got, err := ParseChartKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseChartKind(%q) = %v, %v", k, got, err)
		}
	}

	if _, err := ParseChartKind("donut"); !errors.Is(err, ErrUnknownChartKind) {
		t.Errorf("ParseChartKind(donut) error = %v, want %v", err, ErrUnknownChartKind)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Sample{{Value: 2}, {Value: 4}, {Value: 4}, {Value: 4}, {Value: 5}, {Value: 5}, {Value: 7}, {Value: 9}})

	if s.Count != 8 || s.Min != 2 || s.Max != 9 || s.Mean != 5 {
		t.Errorf("Summarize() = %+v", s)
	}
	// sample standard deviation of the classic example set
	if math.Abs(s.StdDev-2.138) > 0.001 {
		t.Errorf("StdDev = %v, want ~2.138", s.StdDev)
	}
}

func TestSummarize_Edges(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}
	s := Summarize([]Sample{{Value: 3}})
	if s.Count != 1 || s.Mean != 3 || s.StdDev != 0 {
		t.Errorf("Summarize(one) = %+v", s)
	}
}
