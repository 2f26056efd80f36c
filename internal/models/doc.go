// Package models defines domain entities for the lbxd watchlist mirror.
//
// The package contains two categories of types:
//
// 1. Scrape output: [ScrapedFilm], the slug/title pair parsed from a watchlist page.
// Scraped entries are transient; they only exist for the duration of a refresh cycle.
//
// 2. Cache entities: [Film] with its nested [StreamingPlatform] sequence, one row
// per slug in the SQLite cache. [Status] records the outcome of the TMDB lookup:
//   - [StatusFound] : search matched, details and providers fetched
//   - [StatusNotFound] : search returned no candidates (no tmdb_id, no platforms)
//   - [StatusError] : search matched but the details step failed (tmdb_id kept, platforms empty)
//   - [StatusPending] : pre-enrichment default, never persisted by a completed cycle
//
// Film.Validate enforces those coherence rules at the storage boundary.
package models
