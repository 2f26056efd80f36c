// Package repositories provides the SQLite persistence layer for the film cache.
//
// [FilmRepository] exposes the capabilities the refresh pipeline consumes
// (upsert-by-slug and bulk read) plus the pruning and freshness queries the
// surrounding application needs. Nested provider lists are stored as JSON text
// and decoded back into structured types when rows are read.
package repositories
