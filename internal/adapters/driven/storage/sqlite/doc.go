// Package sqlite provides the SQLite-backed audit log for inference runs.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. The schema is
// managed through versioned migrations embedded from the migrations/
// directory.
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
