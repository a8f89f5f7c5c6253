package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakpoints_Table(t *testing.T) {
	assert.Equal(t, map[string]int{"lg": 1280, "md": 1080, "sm": 320, "xs": 240, "xxs": 0}, BreakpointWidths())
	assert.Equal(t, map[string]int{"lg": 8, "md": 6, "sm": 3, "xs": 2, "xxs": 2}, BreakpointColumns())
	assert.Equal(t, []string{"lg", "md", "sm", "xs", "xxs"}, BreakpointNames())
}

func TestBreakpoints_ReturnsCopy(t *testing.T) {
	bps := Breakpoints()
	bps[0].Columns = 99

	b, ok := LookupBreakpoint("lg")
	assert.True(t, ok)
	assert.Equal(t, 8, b.Columns)
}

func TestBreakpoint_ItemsPerRow(t *testing.T) {
	tests := map[string]int{"lg": 4, "md": 3, "sm": 3, "xs": 2, "xxs": 2}
	for name, want := range tests {
		b, ok := LookupBreakpoint(name)
		if assert.True(t, ok, name) {
			assert.Equal(t, want, b.ItemsPerRow(), name)
		}
	}
}

func TestLookupBreakpoint_Unknown(t *testing.T) {
	_, ok := LookupBreakpoint("xl")
	assert.False(t, ok)
}

func TestBreakpointFor(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{1920, "lg"},
		{1280, "lg"},
		{1279, "md"},
		{1080, "md"},
		{800, "sm"},
		{320, "sm"},
		{300, "xs"},
		{100, "xxs"},
		{0, "xxs"},
		{-5, "xxs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BreakpointFor(tt.width).Name, "width %d", tt.width)
	}
}
