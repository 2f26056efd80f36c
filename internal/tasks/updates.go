package tasks

import "fmt"

// ProgressUpdate represents a progress event during a refresh cycle.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ScrapeWatchlist Phase = iota
	EnrichFilms
	PersistFilms
	PruneFilms
)

func (p Phase) String() string {
	switch p {
	case ScrapeWatchlist:
		return "scrape_watchlist"
	case EnrichFilms:
		return "enrich_films"
	case PersistFilms:
		return "persist_films"
	case PruneFilms:
		return "prune_films"
	default:
		return "unknown"
	}
}

func scrapeUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScrapeWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scraping watchlist for %s...", username),
	}
}

func enrichUpdate(step, total int, slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichFilms,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Enriched %s (%d/%d)", slug, step, total),
	}
}

func persistUpdate(step, total int, slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistFilms,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saving %s (%d/%d)", slug, step, total),
	}
}

func pruneUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   PruneFilms,
		Step:    1,
		Total:   1,
		Message: "Pruning films removed from the watchlist...",
	}
}
