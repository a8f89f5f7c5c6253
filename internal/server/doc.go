// Package server provides the HTTP server for the dashgrid dashboard and API.
//
// This package is internal to dashgrid and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS page at "/"
//   - REST API: JSON endpoints under "/api/" that call the board operations
//   - Server-Sent Events: change notifications at "/api/sse"
//
// Mutating endpoints share a token-bucket limiter, and every handler runs
// behind a recover middleware that logs panics with a correlation id.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the dashgrid library should not need to interact with this
// package directly. The server is started automatically by [dashgrid.App.Start].
package server
