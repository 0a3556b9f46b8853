// Package sqlite provides the SQLite-backed analysis history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation. It
// records one row per completed analysis: the video, the summary and the
// sentiment breakdown. Comments and vectors are never persisted.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.threadsense/data/history.db
package sqlite
