// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/services"
)

// MockWatchlist is a test double for [services.WatchlistSource]
type MockWatchlist struct {
	Films []models.ScrapedFilm
	Err   error

	mu    sync.Mutex
	calls int
}

func (m *MockWatchlist) Watchlist(ctx context.Context, username string) ([]models.ScrapedFilm, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Films, nil
}

func (m *MockWatchlist) Name() string { return "mock watchlist" }

// Calls reports how many times Watchlist was invoked.
func (m *MockWatchlist) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockMetadata is a test double for [services.MetadataSource].
// Unset func fields behave as "no candidates" / empty responses.
type MockMetadata struct {
	SearchFunc    func(title string) (int, bool, error)
	DetailsFunc   func(tmdbID int) (*services.MovieDetails, error)
	ProvidersFunc func(tmdbID int, region string) (*services.RegionOffers, error)
}

func (m *MockMetadata) SearchMovie(ctx context.Context, title string) (int, bool, error) {
	if m.SearchFunc == nil {
		return 0, false, nil
	}
	return m.SearchFunc(title)
}

func (m *MockMetadata) MovieDetails(ctx context.Context, tmdbID int) (*services.MovieDetails, error) {
	if m.DetailsFunc == nil {
		return &services.MovieDetails{}, nil
	}
	return m.DetailsFunc(tmdbID)
}

func (m *MockMetadata) MovieProviders(ctx context.Context, tmdbID int, region string) (*services.RegionOffers, error) {
	if m.ProvidersFunc == nil {
		return &services.RegionOffers{}, nil
	}
	return m.ProvidersFunc(tmdbID, region)
}

func (m *MockMetadata) Name() string { return "mock metadata" }

// MemoryFilmStore is an in-memory film store keyed by slug.
//
// Implements the pipeline's store capability without SQLite so coordinator
// tests stay fast and can inject write failures.
type MemoryFilmStore struct {
	mu        sync.Mutex
	films     map[string]models.Film
	UpsertErr error
	upserts   int
}

func NewMemoryFilmStore() *MemoryFilmStore {
	return &MemoryFilmStore{films: make(map[string]models.Film)}
}

func (s *MemoryFilmStore) Upsert(ctx context.Context, film models.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}

	s.upserts++
	s.films[film.Slug] = film
	return nil
}

func (s *MemoryFilmStore) DeleteNotIn(ctx context.Context, slugs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		keep[slug] = true
	}

	var pruned int64
	for slug := range s.films {
		if !keep[slug] {
			delete(s.films, slug)
			pruned++
		}
	}
	return pruned, nil
}

// Get returns the stored film for slug, if any.
func (s *MemoryFilmStore) Get(slug string) (models.Film, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	film, ok := s.films[slug]
	return film, ok
}

// Len reports the number of stored films.
func (s *MemoryFilmStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.films)
}

// Upserts reports the number of successful Upsert calls.
func (s *MemoryFilmStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
