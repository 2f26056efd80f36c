// Letterboxd [WatchlistSource] implementation
//
// Scrapes the public watchlist pages at letterboxd.com/{user}/watchlist/page/{n}/.
// There is no API for watchlists; selectors follow the poster grid markup.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultLetterboxdBaseURL = "https://letterboxd.com"
	letterboxdUserAgent      = "lbxd/1.0 (self-hosted)"
	defaultRequestTimeout    = 30 * time.Second
)

// LetterboxdService implements [WatchlistSource] by scraping watchlist HTML.
type LetterboxdService struct {
	baseURL    string
	delay      time.Duration
	httpClient *http.Client
}

// NewLetterboxdService creates a Letterboxd scraper.
//
// baseURL defaults to letterboxd.com; delay is the pause between successive
// page requests (crawl etiquette; zero disables it, which tests rely on).
func NewLetterboxdService(baseURL string, delay time.Duration) *LetterboxdService {
	if baseURL == "" {
		baseURL = defaultLetterboxdBaseURL
	}

	return &LetterboxdService{
		baseURL:    baseURL,
		delay:      delay,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Name returns the source name.
func (l *LetterboxdService) Name() string {
	return "Letterboxd"
}

// Watchlist fetches every page of the user's public watchlist.
//
// Pages are walked from 1 until a page carries no next link. The returned
// slice preserves source order: within a page, then page by page. Entries
// without a film slug are skipped. Any transport or parse failure aborts
// the whole walk.
func (l *LetterboxdService) Watchlist(ctx context.Context, username string) ([]models.ScrapedFilm, error) {
	if username == "" {
		return nil, shared.ErrMissingUsername
	}

	// Burst 1 means the first page is fetched immediately and every
	// subsequent Wait spaces requests by the configured delay.
	limiter := rate.NewLimiter(rate.Every(l.delay), 1)

	var films []models.ScrapedFilm
	page := 1

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}

		pageFilms, hasNext, err := l.fetchPage(ctx, username, page)
		if err != nil {
			return nil, err
		}

		films = append(films, pageFilms...)

		if !hasNext {
			break
		}
		page++
	}

	return films, nil
}

// fetchPage requests and parses a single watchlist page.
func (l *LetterboxdService) fetchPage(ctx context.Context, username string, page int) ([]models.ScrapedFilm, bool, error) {
	pageURL := fmt.Sprintf("%s/%s/watchlist/page/%d/", l.baseURL, username, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", letterboxdUserAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: page %d: %v", shared.ErrTransport, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("%w: page %d: status %d", shared.ErrTransport, page, resp.StatusCode)
	}

	films, hasNext, err := parseWatchlistPage(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: page %d: %v", shared.ErrParse, page, err)
	}

	return films, hasNext, nil
}

// parseWatchlistPage extracts film entries and the has-next-page signal from
// one page of watchlist HTML.
//
// Posters without a data-film-slug attribute are missing data, not a parse
// error, and are dropped. A page with items but no recognizable pagination
// control simply ends the walk.
func parseWatchlistPage(r io.Reader) ([]models.ScrapedFilm, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, false, err
	}

	var films []models.ScrapedFilm

	doc.Find("li.poster-container div.film-poster").Each(func(_ int, sel *goquery.Selection) {
		slug := strings.TrimSpace(sel.AttrOr("data-film-slug", ""))
		if slug == "" {
			return
		}

		title := strings.TrimSpace(sel.Find("img").AttrOr("alt", ""))
		if title == "" {
			title = slug
		}

		films = append(films, models.ScrapedFilm{Slug: slug, Title: title})
	})

	hasNext := doc.Find("a.next").Length() > 0

	return films, hasNext, nil
}
