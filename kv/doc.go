// Package kv provides the persistent key-value backends a dashboard is
// serialised to.
//
// Every backend satisfies [board.KV]:
//
//   - [MemoryStore]: process-local map, lost on exit
//   - [FileStore]: one JSON file per key in a directory, written atomically,
//     with optional change notifications via fsnotify
//   - [SQLiteStore]: a single SQLite table, for deployments that already
//     keep state in SQLite
//
// Backends are safe for concurrent use. There is no cross-process
// coordination: two writers sharing a backend overwrite each other, last
// write wins.
package kv
