// package models defines the data model for the watchlist mirror service
package models

import (
	"fmt"
)

// Status describes the outcome of a film's TMDB lookup.
type Status string

const (
	StatusPending  Status = "pending"   // model default, never written by a completed cycle
	StatusFound    Status = "found"     // search matched and details were fetched
	StatusNotFound Status = "not_found" // search returned no candidates
	StatusError    Status = "error"     // search matched but the details step failed
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFound, StatusNotFound, StatusError:
		return true
	}
	return false
}

// ScrapedFilm is one watchlist entry as parsed from a Letterboxd page.
//
// Slug is the stable Letterboxd identifier and the cache's upsert key.
type ScrapedFilm struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// StreamingPlatform is one subscription provider carrying a film in the
// configured region. Always nested in a Film, persisted as JSON.
type StreamingPlatform struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path,omitempty"` // absolute URL, resolved at enrichment time
}

// Film is one enriched watchlist entry, the atomic unit of persistence.
type Film struct {
	ID          int                 `json:"id,omitempty"`
	Slug        string              `json:"letterboxd_slug"`
	Title       string              `json:"title"`
	Year        *int                `json:"year,omitempty"`
	TMDBID      *int                `json:"tmdb_id,omitempty"`
	Status      Status              `json:"tmdb_status"`
	PosterURL   string              `json:"poster_url,omitempty"`
	Genres      []string            `json:"genres,omitempty"`
	Platforms   []StreamingPlatform `json:"streaming_platforms,omitempty"`
	WatchLink   string              `json:"watch_link,omitempty"`
	Country     string              `json:"country,omitempty"`
	LastChecked string              `json:"last_checked,omitempty"` // RFC 3339
	Source      string              `json:"source"`
}

// NewFilm creates a Film in its pre-enrichment state for the given watchlist entry.
func NewFilm(scraped ScrapedFilm, country string) Film {
	return Film{
		Slug:    scraped.Slug,
		Title:   scraped.Title,
		Status:  StatusPending,
		Country: country,
		Source:  "letterboxd",
	}
}

// Validate checks structural validity and the status/tmdb_id coherence rules.
func (f Film) Validate() error {
	if f.Slug == "" {
		return fmt.Errorf("film missing slug")
	}
	if f.Title == "" {
		return fmt.Errorf("film %s missing title", f.Slug)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("film %s has unknown status %q", f.Slug, f.Status)
	}
	switch f.Status {
	case StatusFound:
		if f.TMDBID == nil {
			return fmt.Errorf("film %s has status found without a tmdb_id", f.Slug)
		}
	case StatusNotFound:
		if f.TMDBID != nil {
			return fmt.Errorf("film %s has status not_found with a tmdb_id", f.Slug)
		}
	}
	if f.Status != StatusFound && len(f.Platforms) > 0 {
		return fmt.Errorf("film %s has platforms without status found", f.Slug)
	}
	return nil
}
