package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/jpalmerr/dashgrid/board"
)

func TestPanelCommands_EditFlow(t *testing.T) {
	cfg := writeConfig(t, "")

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"panel", "list"}, "(no panels)"},
		{[]string{"panel", "add", "Revenue", "--kind", "BAR"}, `added dashboard-item-1 "Revenue" (bar)`},
		{[]string{"panel", "add", "Signups"}, `added dashboard-item-2 "Signups" (line)`},
		{[]string{"panel", "add"}, `added dashboard-item-3 "Panel 3" (line)`},
		{[]string{"panel", "kind", "rev", "pie"}, "dashboard-item-1 is now a pie chart"},
		{[]string{"panel", "rename", "2", "Users"}, `renamed dashboard-item-2 "Signups" -> "Users"`},
		{[]string{"panel", "select", "users"}, `selected dashboard-item-2 "Users"`},
	}
	for _, s := range steps {
		out, err := execute(t, append(s.args, "-c", cfg)...)
		if err != nil {
			t.Fatalf("%v: error = %v", s.args, err)
		}
		if !strings.Contains(out, s.want) {
			t.Fatalf("%v: output = %q, want to contain %q", s.args, out, s.want)
		}
	}

	out, err := execute(t, "panel", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("panel list error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("panel list printed %d lines, want 4:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "* dashboard-item-2") {
		t.Errorf("selected row = %q, want it marked", lines[2])
	}
	if !strings.Contains(lines[1], "Revenue") || !strings.HasSuffix(lines[1], "pie") {
		t.Errorf("first row = %q", lines[1])
	}

	out, err = execute(t, "panel", "show", "dashboard-item-2", "-c", cfg)
	if err != nil {
		t.Fatalf("panel show error = %v", err)
	}
	for _, want := range []string{"Users", "Kind:     line", "Selected: true", "lg:", "Samples:  50"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel show output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "panel", "remove", "users", "-c", cfg); err != nil {
		t.Fatalf("panel remove error = %v", err)
	}
	out, _ = execute(t, "panel", "list", "-c", cfg)
	if strings.Contains(out, "Users") || strings.Contains(out, "*") {
		t.Errorf("removed panel or its selection still listed:\n%s", out)
	}

	// ids are not reused after removal
	out, err = execute(t, "panel", "add", "-c", cfg)
	if err != nil {
		t.Fatalf("panel add error = %v", err)
	}
	if !strings.Contains(out, "dashboard-item-4") {
		t.Errorf("panel add output = %q, want dashboard-item-4", out)
	}
}

func TestPanelCommands_Errors(t *testing.T) {
	cfg := writeConfig(t, "")
	if _, err := execute(t, "panel", "add", "Revenue", "-c", cfg); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"bad kind on add", []string{"panel", "add", "X", "--kind", "donut"}},
		{"bad kind", []string{"panel", "kind", "1", "donut"}},
		{"unknown panel", []string{"panel", "remove", "zzz"}},
		{"select needs a panel", []string{"panel", "select"}},
		{"select both", []string{"panel", "select", "1", "--clear"}},
		{"missing args", []string{"panel", "rename", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, append(tt.args, "-c", cfg)...); err == nil {
				t.Errorf("%v: expected error, got nil", tt.args)
			}
		})
	}
}

func TestPanelSelect_Clear(t *testing.T) {
	cfg := writeConfig(t, "")
	for _, args := range [][]string{
		{"panel", "add", "Revenue"},
		{"panel", "select", "1"},
		{"panel", "select", "--clear"},
	} {
		if _, err := execute(t, append(args, "-c", cfg)...); err != nil {
			t.Fatalf("%v: error = %v", args, err)
		}
	}

	out, _ := execute(t, "panel", "show", "1", "-c", cfg)
	if !strings.Contains(out, "Selected: false") {
		t.Errorf("selection not cleared:\n%s", out)
	}
}

func TestResolvePanel(t *testing.T) {
	d := board.NewDashboard()
	for id, title := range map[string]string{
		"dashboard-item-1": "Revenue",
		"dashboard-item-2": "cpu eu",
		"dashboard-item-3": "cpu us",
		"dashboard-item-7": "Signups",
	} {
		d.Panels[id] = &board.Panel{ID: id, Title: title, Kind: board.ChartLine}
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"full id", "dashboard-item-7", "dashboard-item-7", false},
		{"number", "3", "dashboard-item-3", false},
		{"fuzzy title", "rev", "dashboard-item-1", false},
		{"case insensitive", "SIGN", "dashboard-item-7", false},
		{"distinguishing suffix", "cpu us", "dashboard-item-3", false},
		{"ambiguous", "cpu", "", true},
		{"no match", "zzz", "", true},
		{"unknown number", "9", "", true},
		{"empty", " ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolvePanel(d, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolvePanel(%q) = %s, want error", tt.ref, p.ID)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePanel(%q) error = %v", tt.ref, err)
			}
			if p.ID != tt.want {
				t.Errorf("resolvePanel(%q) = %s, want %s", tt.ref, p.ID, tt.want)
			}
		})
	}

	if _, err := resolvePanel(d, "zzz"); !errors.Is(err, board.ErrPanelNotFound) {
		t.Errorf("no-match error = %v, want ErrPanelNotFound", err)
	}
}
