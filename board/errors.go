package board

import "errors"

var (
	// ErrNoDashboard is returned by [Session] accessors before the session
	// has been opened.
	ErrNoDashboard = errors.New("dashboard session not opened")

	// ErrPanelNotFound is returned when an operation names a panel id that
	// is not in the dashboard.
	ErrPanelNotFound = errors.New("panel not found")

	// ErrUnknownChartKind is returned for chart kinds outside [ChartKinds].
	ErrUnknownChartKind = errors.New("unknown chart kind")
)
