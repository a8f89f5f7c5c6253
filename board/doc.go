// Package board implements the dashboard document and the store that owns
// every mutation to it.
//
// A [Dashboard] is a set of chart [Panel] values plus one grid layout per
// responsive breakpoint. The [Store] allocates panel identifiers, places new
// panels in each breakpoint's grid and persists the document to a [KV]
// backend after every change. Sample series data is never persisted; it is
// regenerated on load.
//
// # Quick Start
//
//	st := board.NewStore(kv.NewMemoryStore())
//	d := st.Load(ctx)
//
//	p, err := st.AddPanel(ctx, d, "")   // dashboard-item-1, "Panel 1"
//	err = st.RemoveItem(ctx, d, p.ID)   // panel and its placements gone
//
// Applications that serve the dashboard to several callers wrap the store in
// a [Session], which serialises mutations and publishes change [Event]
// values to subscribers.
//
// # Breakpoints
//
// The breakpoint table is fixed process-wide configuration:
//
//	lg  >= 1280px  8 columns  2x2 unit
//	md  >= 1080px  6 columns  2x2 unit
//	sm  >=  320px  3 columns  1x1 unit
//	xs  >=  240px  2 columns  1x1 unit
//	xxs >=    0px  2 columns  1x1 unit
//
// Use [Breakpoints], [LookupBreakpoint], [BreakpointWidths] and
// [BreakpointColumns] to read it.
package board
