// Package sqlite provides the default driven.ProjectStore, backed by
// modernc.org/sqlite (pure Go, no CGO).
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.pageform/data/pageform.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite
// WAL mode and a busy timeout for writer coordination, and first-write-wins
// semantics for cached forms are enforced in SQL.
package sqlite
