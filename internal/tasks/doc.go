// Package tasks orchestrates the refresh pipeline that keeps the film cache
// in sync with the upstream watchlist.
//
// # Refresh Cycle
//
// [RefreshEngine.Run] performs one cycle: scrape the full watchlist, enrich
// every entry against TMDB, upsert each record into the cache, then prune
// rows whose slug left the watchlist. The scheduler calls Run directly; the
// web trigger uses [RefreshEngine.Start], which runs the same cycle in the
// background. Both paths share a [runGuard] whose atomic check-and-set guarantees at
// most one cycle in flight. A losing caller gets
// [shared.ErrRefreshInProgress] back immediately and does no work.
//
// The guard is released by defer, so the engine reports idle after every
// return path, including failures.
//
// # Failure Containment
//
// A watchlist failure aborts the cycle before anything is written. TMDB
// failures are contained per film: a failed search or details step only
// downgrades that film's status. A persistence failure stops the cycle
// mid-write; rows already upserted remain (each upsert is atomic on its
// own, the cycle is not one transaction).
//
// # Concurrency
//
// Enrichment fans out over a worker pool (default 10 workers) so the number
// of simultaneously in-flight TMDB calls stays bounded across the whole
// batch. Output is a map keyed by slug; ordering among concurrent lookups
// is deliberately unspecified.
//
// # Progress Updates
//
// Long phases emit [ProgressUpdate] values on a caller-supplied channel via
// a non-blocking send, so a slow or absent consumer never stalls the cycle.
package tasks
