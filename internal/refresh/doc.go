// Package refresh periodically regenerates the sample data shown in every
// dashboard panel.
//
// Sample data is never persisted, so a refresh only changes what open views
// display. The [Scheduler] ticks at a fixed interval and recovers from
// panics in the refresh target so one bad tick does not stop the loop.
package refresh
