// package tasks implements the watchlist refresh pipeline.
//
// The core abstraction is RefreshEngine, which orchestrates scrape → enrich →
// persist for one refresh cycle behind a single-flight guard. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/services"
	"github.com/desertthunder/lbxd/internal/shared"
)

// defaultWorkers caps the number of simultaneously in-flight TMDB calls.
const defaultWorkers = 10

// FilmStore is the slice of the persistence layer the pipeline writes through.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type FilmStore interface {
	Upsert(ctx context.Context, film models.Film) error
	DeleteNotIn(ctx context.Context, slugs []string) (int64, error)
}

// RefreshResult summarizes one completed refresh cycle.
type RefreshResult struct {
	RunID     string        // Correlates log lines of this cycle
	Scraped   int           // Entries parsed from the watchlist
	Found     int           // Films with status found
	NotFound  int           // Films TMDB could not identify
	Failed    int           // Films whose details step failed
	Persisted int           // Rows upserted
	Pruned    int64         // Rows removed because their slug left the watchlist
	Duration  time.Duration // Wall-clock time of the cycle
}

// runGuard is the single-flight guard for refresh cycles.
//
// Check-and-set is atomic: of two racing callers exactly one acquires, the
// other is rejected, never queued.
type runGuard struct {
	mu      sync.Mutex
	running bool
}

func (g *runGuard) tryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return false
	}
	g.running = true
	return true
}

func (g *runGuard) release() {
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
}

func (g *runGuard) active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// RefreshEngine coordinates one refresh cycle: fetch the watchlist, enrich
// every entry against TMDB, and upsert the results into the film cache.
//
// Both the interval scheduler and the manual trigger call the same Run entry
// point; the guard guarantees at most one cycle is in flight.
type RefreshEngine struct {
	watchlist services.WatchlistSource
	metadata  services.MetadataSource
	store     FilmStore
	logger    *log.Logger
	workers   int
	guard     runGuard
}

// NewRefreshEngine creates a RefreshEngine with the provided collaborators.
//
// workers bounds concurrent TMDB lookups; values <= 0 fall back to the default cap.
func NewRefreshEngine(watchlist services.WatchlistSource, metadata services.MetadataSource, store FilmStore, logger *log.Logger, workers int) *RefreshEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &RefreshEngine{
		watchlist: watchlist,
		metadata:  metadata,
		store:     store,
		logger:    logger,
		workers:   workers,
	}
}

// Refreshing reports whether a refresh cycle is currently in flight.
// Read-only; transitions are owned by Run.
func (e *RefreshEngine) Refreshing() bool {
	return e.guard.active()
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *RefreshEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes one full refresh cycle for the given user and region.
//
// Returns [shared.ErrRefreshInProgress] without doing any work when another
// cycle holds the guard. The guard is released on every exit path, so the
// engine always reports idle after Run returns.
//
// A watchlist failure aborts the cycle before anything is persisted.
// Enrichment failures are contained per film. A persistence failure stops
// the cycle mid-write; rows upserted before the failure remain.
func (e *RefreshEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, username, region string) (*RefreshResult, error) {
	if e.watchlist == nil || e.metadata == nil || e.store == nil {
		return nil, fmt.Errorf("%w: refresh engine not fully initialized", shared.ErrServiceUnavailable)
	}

	if !e.guard.tryAcquire() {
		e.logger.Info("refresh already in progress, skipping", "user", username)
		return nil, shared.ErrRefreshInProgress
	}
	defer e.guard.release()

	return e.run(ctx, progress, username, region)
}

// Start launches a refresh cycle in the background.
//
// The guard is acquired before Start returns, so a caller that polls
// Refreshing right after a successful Start observes the cycle in flight.
// Returns [shared.ErrRefreshInProgress] when another cycle holds the guard.
func (e *RefreshEngine) Start(ctx context.Context, progress chan<- ProgressUpdate, username, region string) error {
	if e.watchlist == nil || e.metadata == nil || e.store == nil {
		return fmt.Errorf("%w: refresh engine not fully initialized", shared.ErrServiceUnavailable)
	}

	if !e.guard.tryAcquire() {
		return shared.ErrRefreshInProgress
	}

	go func() {
		defer e.guard.release()
		if _, err := e.run(ctx, progress, username, region); err != nil {
			e.logger.Error("background refresh failed", "err", err)
		}
	}()
	return nil
}

// run executes the cycle body. The caller owns the guard.
func (e *RefreshEngine) run(ctx context.Context, progress chan<- ProgressUpdate, username, region string) (*RefreshResult, error) {
	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run_id", runID, "user", username)
	started := time.Now()

	logger.Info("starting refresh", "region", region)
	e.sendProgress(progress, scrapeUpdate(username))

	scraped, err := e.watchlist.Watchlist(ctx, username)
	if err != nil {
		logger.Error("watchlist fetch failed", "err", err)
		return nil, fmt.Errorf("watchlist fetch failed: %w", err)
	}
	logger.Info("scraped watchlist", "films", len(scraped))

	enriched := e.Enrich(ctx, progress, scraped, region)
	logger.Info("enriched films", "films", len(enriched))

	result := &RefreshResult{RunID: runID, Scraped: len(scraped)}

	persisted := 0
	for _, film := range enriched {
		e.sendProgress(progress, persistUpdate(persisted+1, len(enriched), film.Slug))

		if err := e.store.Upsert(ctx, film); err != nil {
			logger.Error("persist failed", "slug", film.Slug, "err", err)
			return nil, fmt.Errorf("persist failed for %s: %w", film.Slug, err)
		}
		persisted++

		switch film.Status {
		case models.StatusFound:
			result.Found++
		case models.StatusNotFound:
			result.NotFound++
		case models.StatusError:
			result.Failed++
		}
	}
	result.Persisted = persisted

	slugs := make([]string, len(scraped))
	for i, film := range scraped {
		slugs[i] = film.Slug
	}

	e.sendProgress(progress, pruneUpdate())
	pruned, err := e.store.DeleteNotIn(ctx, slugs)
	if err != nil {
		logger.Error("prune failed", "err", err)
		return nil, fmt.Errorf("prune failed: %w", err)
	}
	result.Pruned = pruned
	result.Duration = time.Since(started)

	logger.Info("refresh complete",
		"found", result.Found,
		"not_found", result.NotFound,
		"failed", result.Failed,
		"pruned", result.Pruned,
		"duration", result.Duration,
	)
	return result, nil
}

// Enrich resolves TMDB metadata for every scraped film.
//
// A fixed pool of workers fans the lookups out, bounding the number of
// in-flight TMDB calls across the whole batch. Enrich never fails as a
// whole: every input yields exactly one record in the returned map, with
// per-film failures recorded as status error or not_found.
func (e *RefreshEngine) Enrich(ctx context.Context, progress chan<- ProgressUpdate, scraped []models.ScrapedFilm, region string) map[string]models.Film {
	enriched := make(map[string]models.Film, len(scraped))
	if len(scraped) == 0 {
		return enriched
	}

	workers := e.workers
	if workers > len(scraped) {
		workers = len(scraped)
	}

	jobs := make(chan models.ScrapedFilm)
	results := make(chan models.Film, len(scraped))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for film := range jobs {
				results <- e.enrichOne(ctx, film, region)
			}
		}()
	}

	go func() {
		for _, film := range scraped {
			jobs <- film
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for film := range results {
		completed++
		e.sendProgress(progress, enrichUpdate(completed, len(scraped), film.Slug))
		enriched[film.Slug] = film
	}

	return enriched
}

// enrichOne performs the two-step lookup for a single film.
//
// Step failures downgrade this record only; siblings are unaffected. An
// error after a successful search keeps the id so the row records which
// film the failure belongs to.
func (e *RefreshEngine) enrichOne(ctx context.Context, scraped models.ScrapedFilm, region string) models.Film {
	film := models.NewFilm(scraped, region)
	film.LastChecked = shared.Timestamp()

	tmdbID, found, err := e.metadata.SearchMovie(ctx, scraped.Title)
	if err != nil {
		e.logger.Warn("tmdb search failed", "slug", scraped.Slug, "err", err)
		film.Status = models.StatusError
		return film
	}
	if !found {
		film.Status = models.StatusNotFound
		return film
	}

	film.TMDBID = &tmdbID

	details, err := e.metadata.MovieDetails(ctx, tmdbID)
	if err != nil {
		e.logger.Warn("tmdb details failed", "slug", scraped.Slug, "tmdb_id", tmdbID, "err", err)
		film.Status = models.StatusError
		return film
	}

	offers, err := e.metadata.MovieProviders(ctx, tmdbID, region)
	if err != nil {
		e.logger.Warn("tmdb providers failed", "slug", scraped.Slug, "tmdb_id", tmdbID, "err", err)
		film.Status = models.StatusError
		return film
	}

	film.Status = models.StatusFound
	film.Year = details.Year
	film.PosterURL = details.PosterURL
	film.Genres = details.Genres
	film.Platforms = offers.Platforms
	film.WatchLink = offers.WatchLink
	return film
}
