// package services defines interfaces for the two upstream sources
//
// Letterboxd (HTML), TMDB (JSON API)
package services

import (
	"context"

	"github.com/desertthunder/lbxd/internal/models"
)

// WatchlistSource retrieves the full watch-list of a user from a listing source.
type WatchlistSource interface {
	// Watchlist fetches every page of the user's public watchlist, in
	// page-then-within-page order. Any page-level failure aborts the
	// whole fetch; no partial list is returned.
	Watchlist(ctx context.Context, username string) ([]models.ScrapedFilm, error)

	// Name returns the name of the source (e.g. "Letterboxd")
	Name() string
}

// MetadataSource performs the two-step film lookup against a metadata provider.
type MetadataSource interface {
	// SearchMovie queries the source by title. Returns the first candidate's
	// id and true, or false when the search yields no candidates.
	SearchMovie(ctx context.Context, title string) (int, bool, error)

	// MovieDetails fetches poster, release year and genres for a film.
	MovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error)

	// MovieProviders fetches the subscription-tier providers for a film in
	// one region. Rental and purchase tiers are never surfaced.
	MovieProviders(ctx context.Context, tmdbID int, region string) (*RegionOffers, error)

	// Name returns the name of the source (e.g. "TMDB")
	Name() string
}

// MovieDetails is the detail-step result with image paths already resolved
// to absolute URLs.
type MovieDetails struct {
	PosterURL string
	Year      *int
	Genres    []string
}

// RegionOffers is the provider-step result for a single region.
type RegionOffers struct {
	Platforms []models.StreamingPlatform
	WatchLink string
}
