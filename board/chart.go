package board

import "fmt"

// ChartKind is the rendering style of a [Panel].
//
// ChartKind is a string type so it serialises to readable JSON and logs,
// while the defined constants keep the set closed. Use [ParseChartKind] to
// validate untrusted input.
type ChartKind string

const (
	// ChartLine draws the series as a line. New panels start as line charts.
	ChartLine ChartKind = "line"

	// ChartBar draws one bar per sample.
	ChartBar ChartKind = "bar"

	// ChartPie draws the samples as pie slices.
	ChartPie ChartKind = "pie"

	// ChartArea draws the series as a filled area.
	ChartArea ChartKind = "area"
)

// ChartKinds returns every supported chart kind in menu order.
func ChartKinds() []ChartKind {
	return []ChartKind{ChartLine, ChartPie, ChartArea, ChartBar}
}

// String returns the string representation of the chart kind.
func (k ChartKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the supported chart kinds.
func (k ChartKind) Valid() bool {
	switch k {
	case ChartLine, ChartBar, ChartPie, ChartArea:
		return true
	default:
		return false
	}
}

// ParseChartKind converts s to a [ChartKind].
// Returns an error wrapping [ErrUnknownChartKind] if s is not supported.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
	}
	return k, nil
}
