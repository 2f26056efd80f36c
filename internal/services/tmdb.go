// TMDB API implementation of [MetadataSource]
//
// TMDB API response types based on https://developer.themoviedb.org/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/shared"
)

const (
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p"

	// Image rendition sizes; logos and posters use distinct base paths.
	tmdbLogoSize   = "w45"
	tmdbPosterSize = "w300"
)

// tmdbSearchResult is one candidate from the search endpoint.
type tmdbSearchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type tmdbSearchResponse struct {
	Results []tmdbSearchResult `json:"results"`
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// tmdbMovie is the subset of the movie details payload the enricher reads.
type tmdbMovie struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	PosterPath  string      `json:"poster_path"`
	ReleaseDate string      `json:"release_date"`
	Genres      []tmdbGenre `json:"genres"`
}

// tmdbProvider is one provider entry within a tier.
type tmdbProvider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// tmdbRegionOffers is the per-region breakdown from the watch/providers
// endpoint. Only the flatrate tier is read; rent/buy are ignored.
type tmdbRegionOffers struct {
	Link     string         `json:"link"`
	Flatrate []tmdbProvider `json:"flatrate"`
}

type tmdbProvidersResponse struct {
	Results map[string]tmdbRegionOffers `json:"results"`
}

// TMDBService implements the MetadataSource interface for TMDB API interactions.
type TMDBService struct {
	baseURL    string
	imageURL   string
	apiKey     string
	httpClient *http.Client
}

// NewTMDBService creates a new TMDB service with the given API key.
//
// baseURL overrides the API host (tests point it at a local server).
func NewTMDBService(baseURL, apiKey string) *TMDBService {
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}

	return &TMDBService{
		baseURL:    baseURL,
		imageURL:   defaultTMDBImageURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Name returns the source name.
func (t *TMDBService) Name() string {
	return "TMDB"
}

// doRequest performs an authenticated GET against the TMDB API and decodes
// the JSON response into result.
func (t *TMDBService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.apiKey)

	apiURL := t.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: status %d", shared.ErrTransport, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrParse, endpoint, err)
	}

	return nil
}

// SearchMovie queries TMDB by title and returns the first candidate's id.
//
// The second return value is false when the search yields no candidates.
func (t *TMDBService) SearchMovie(ctx context.Context, title string) (int, bool, error) {
	params := url.Values{}
	params.Set("query", title)

	var response tmdbSearchResponse
	if err := t.doRequest(ctx, "/search/movie", params, &response); err != nil {
		return 0, false, err
	}

	if len(response.Results) == 0 {
		return 0, false, nil
	}

	return response.Results[0].ID, true, nil
}

// MovieDetails fetches poster, release year and genres for a film,
// resolving the poster path to an absolute URL.
func (t *TMDBService) MovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error) {
	var movie tmdbMovie
	endpoint := fmt.Sprintf("/movie/%d", tmdbID)
	if err := t.doRequest(ctx, endpoint, nil, &movie); err != nil {
		return nil, err
	}

	details := &MovieDetails{
		Year: releaseYear(movie.ReleaseDate),
	}

	if movie.PosterPath != "" {
		details.PosterURL = t.imageURL + "/" + tmdbPosterSize + movie.PosterPath
	}

	for _, g := range movie.Genres {
		details.Genres = append(details.Genres, g.Name)
	}

	return details, nil
}

// MovieProviders fetches the flatrate providers available in one region,
// resolving logo paths to absolute URLs.
//
// A region absent from the response yields empty offers, not an error.
func (t *TMDBService) MovieProviders(ctx context.Context, tmdbID int, region string) (*RegionOffers, error) {
	var response tmdbProvidersResponse
	endpoint := fmt.Sprintf("/movie/%d/watch/providers", tmdbID)
	if err := t.doRequest(ctx, endpoint, nil, &response); err != nil {
		return nil, err
	}

	offers := &RegionOffers{}

	regionOffers, ok := response.Results[region]
	if !ok {
		return offers, nil
	}

	offers.WatchLink = regionOffers.Link
	for _, p := range regionOffers.Flatrate {
		platform := models.StreamingPlatform{
			ProviderID:   p.ProviderID,
			ProviderName: p.ProviderName,
		}
		if p.LogoPath != "" {
			platform.LogoPath = t.imageURL + "/" + tmdbLogoSize + p.LogoPath
		}
		offers.Platforms = append(offers.Platforms, platform)
	}

	return offers, nil
}

// releaseYear extracts the year from a TMDB release date ("2021-10-22").
func releaseYear(releaseDate string) *int {
	if len(releaseDate) < 4 {
		return nil
	}

	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return nil
	}

	return &year
}
