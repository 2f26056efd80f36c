package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/shared"
	"github.com/desertthunder/lbxd/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

// FilmSource is the slice of the persistence layer the web surface reads from.
type FilmSource interface {
	All(ctx context.Context) ([]models.Film, error)
	LastChecked(ctx context.Context) (string, error)
}

// Refresher triggers refresh cycles and reports whether one is in flight.
type Refresher interface {
	Start(ctx context.Context, progress chan<- tasks.ProgressUpdate, username, region string) error
	Refreshing() bool
}

// FilmHandler serves the watchlist page and the JSON API.
//
// Implements the [Handler] interface for registration with a [Router].
type FilmHandler struct {
	films    FilmSource
	engine   Refresher
	username string
	region   string
	logger   *log.Logger
	tmpl     *template.Template
}

// NewFilmHandler creates a FilmHandler backed by the given store and engine.
func NewFilmHandler(films FilmSource, engine Refresher, username, region string, logger *log.Logger) (*FilmHandler, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &FilmHandler{
		films:    films,
		engine:   engine,
		username: username,
		region:   region,
		logger:   logger,
		tmpl:     tmpl,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *FilmHandler) Routes() []string {
	return []string{"/", "/health", "/api/films", "/api/refresh"}
}

// ServeHTTP dispatches requests to the appropriate endpoint.
func (h *FilmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		h.requireMethod(w, r, http.MethodGet, h.index)
	case "/health":
		h.requireMethod(w, r, http.MethodGet, h.health)
	case "/api/films":
		h.requireMethod(w, r, http.MethodGet, h.listFilms)
	case "/api/refresh":
		h.requireMethod(w, r, http.MethodPost, h.triggerRefresh)
	default:
		http.NotFound(w, r)
	}
}

func (h *FilmHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	next(w, r)
}

// indexData is the view model for the watchlist page.
type indexData struct {
	Username    string
	Films       []models.Film
	LastChecked string
	Refreshing  bool
}

func (h *FilmHandler) index(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.All(r.Context())
	if err != nil {
		h.logger.Error("failed to load films", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	lastChecked, err := h.films.LastChecked(r.Context())
	if err != nil {
		h.logger.Error("failed to load last checked", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Username:    h.username,
		Films:       films,
		LastChecked: lastChecked,
		Refreshing:  h.engine.Refreshing(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		h.logger.Error("failed to render page", "err", err)
	}
}

func (h *FilmHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *FilmHandler) listFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.All(r.Context())
	if err != nil {
		h.logger.Error("failed to load films", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load films"})
		return
	}

	lastChecked, err := h.films.LastChecked(r.Context())
	if err != nil {
		h.logger.Error("failed to load last checked", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load films"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"films":         films,
		"count":         len(films),
		"last_checked":  lastChecked,
		"is_refreshing": h.engine.Refreshing(),
	})
}

// triggerRefresh launches a refresh cycle in the background.
//
// The response reports started or already_running; it never waits for the
// cycle to finish. The cycle outlives the request, so it runs detached
// from the request context.
func (h *FilmHandler) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	err := h.engine.Start(context.Background(), nil, h.username, h.region)
	if errors.Is(err, shared.ErrRefreshInProgress) {
		h.writeJSON(w, http.StatusConflict, map[string]any{"status": "already_running"})
		return
	}
	if err != nil {
		h.logger.Error("failed to start refresh", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to start refresh"})
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]any{"status": "started"})
}

func (h *FilmHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := shared.MarshalJSON(payload, false)
	if err != nil {
		h.logger.Error("failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
