package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/shared"
	"github.com/desertthunder/lbxd/internal/tasks"
)

type fakeFilmSource struct {
	films       []models.Film
	lastChecked string
	err         error
}

func (f *fakeFilmSource) All(ctx context.Context) ([]models.Film, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.films, nil
}

func (f *fakeFilmSource) LastChecked(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.lastChecked, nil
}

type fakeRefresher struct {
	refreshing bool
	startErr   error
	starts     int
}

func (f *fakeRefresher) Start(ctx context.Context, progress chan<- tasks.ProgressUpdate, username, region string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeRefresher) Refreshing() bool { return f.refreshing }

func intPtr(v int) *int { return &v }

func foundFilm(slug, title string) models.Film {
	return models.Film{
		Slug:      slug,
		Title:     title,
		Year:      intPtr(2023),
		TMDBID:    intPtr(872585),
		Status:    models.StatusFound,
		PosterURL: "https://image.tmdb.org/t/p/w300/opp.jpg",
		Platforms: []models.StreamingPlatform{
			{ProviderID: 8, ProviderName: "Netflix", LogoPath: "https://image.tmdb.org/t/p/w45/n.jpg"},
		},
		WatchLink: "https://www.themoviedb.org/movie/872585/watch",
		Country:   "GB",
	}
}

func newTestHandler(t *testing.T, films *fakeFilmSource, engine *fakeRefresher) *FilmHandler {
	t.Helper()
	handler, err := NewFilmHandler(films, engine, "cinephile", "GB", shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("NewFilmHandler failed: %v", err)
	}
	return handler
}

func TestFilmHandler(t *testing.T) {
	t.Run("GET /health returns ok", func(t *testing.T) {
		handler := newTestHandler(t, &fakeFilmSource{}, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("Unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("GET / renders the watchlist page", func(t *testing.T) {
		films := &fakeFilmSource{
			films:       []models.Film{foundFilm("oppenheimer-2023", "Oppenheimer")},
			lastChecked: "2026-08-29T10:00:00Z",
		}
		handler := newTestHandler(t, films, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"Oppenheimer", "Netflix", "cinephile", "2026-08-29T10:00:00Z"} {
			if !strings.Contains(body, want) {
				t.Errorf("Page missing %q", want)
			}
		}
	})

	t.Run("GET / renders the empty state", func(t *testing.T) {
		handler := newTestHandler(t, &fakeFilmSource{}, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "No films cached yet") {
			t.Error("Expected empty state message")
		}
	})

	t.Run("GET /api/films returns the cache as JSON", func(t *testing.T) {
		films := &fakeFilmSource{
			films:       []models.Film{foundFilm("oppenheimer-2023", "Oppenheimer")},
			lastChecked: "2026-08-29T10:00:00Z",
		}
		handler := newTestHandler(t, films, &fakeRefresher{refreshing: true})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/films", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var payload struct {
			Films       []models.Film `json:"films"`
			Count       int           `json:"count"`
			LastChecked string        `json:"last_checked"`
			Refreshing  bool          `json:"is_refreshing"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if payload.Count != 1 || len(payload.Films) != 1 {
			t.Errorf("Unexpected count: %+v", payload)
		}
		if payload.Films[0].Slug != "oppenheimer-2023" {
			t.Errorf("Unexpected film: %+v", payload.Films[0])
		}
		if !payload.Refreshing {
			t.Error("Expected is_refreshing true")
		}
	})

	t.Run("GET /api/films reports store failures", func(t *testing.T) {
		handler := newTestHandler(t, &fakeFilmSource{err: shared.ErrServiceUnavailable}, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/films", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", rec.Code)
		}
	})

	t.Run("POST /api/refresh starts a cycle", func(t *testing.T) {
		engine := &fakeRefresher{}
		handler := newTestHandler(t, &fakeFilmSource{}, engine)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

		if rec.Code != http.StatusAccepted {
			t.Errorf("Expected 202, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "started") {
			t.Errorf("Unexpected body: %s", rec.Body.String())
		}
		if engine.starts != 1 {
			t.Errorf("Expected one start, got %d", engine.starts)
		}
	})

	t.Run("POST /api/refresh reports a cycle in flight", func(t *testing.T) {
		engine := &fakeRefresher{startErr: shared.ErrRefreshInProgress}
		handler := newTestHandler(t, &fakeFilmSource{}, engine)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

		if rec.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "already_running") {
			t.Errorf("Unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("GET /api/refresh is rejected", func(t *testing.T) {
		handler := newTestHandler(t, &fakeFilmSource{}, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("unknown paths return 404", func(t *testing.T) {
		handler := newTestHandler(t, &fakeFilmSource{}, &fakeRefresher{})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle filters by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/refresh", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
		if rec.Code != http.StatusAccepted {
			t.Errorf("Expected 202, got %d", rec.Code)
		}
	})

	t.Run("Handler registers all routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(newTestHandler(t, &fakeFilmSource{}, &fakeRefresher{}))

		for _, path := range []string{"/", "/health", "/api/films"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
			}
		}
	})

	t.Run("middleware wraps in order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("Unexpected execution order: %v", order)
		}
	})

	t.Run("RequestLogger passes the response through", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RequestLogger(shared.NewLogger(nil)))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("Expected 418, got %d", rec.Code)
		}
	})
}
