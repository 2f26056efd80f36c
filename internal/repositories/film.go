package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/lbxd/internal/models"
)

// FilmRepository is the durable cache the refresh pipeline writes into.
//
// One row per Letterboxd slug; Upsert fully overwrites the mutable columns
// of an existing row, so re-running an identical cycle is a no-op.
type FilmRepository struct {
	db *sql.DB
}

// NewFilmRepository creates a new FilmRepository with the given database connection
func NewFilmRepository(db *sql.DB) *FilmRepository {
	return &FilmRepository{db: db}
}

// Upsert inserts the film or overwrites the existing row with the same slug.
//
// The nested platform list and genres are stored as JSON text. Each upsert
// is its own statement; the pipeline deliberately does not wrap a cycle's
// upserts in one transaction, so records persisted before a mid-run failure
// survive.
func (r *FilmRepository) Upsert(ctx context.Context, film models.Film) error {
	if err := film.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	platformsJSON, err := json.Marshal(film.Platforms)
	if err != nil {
		return fmt.Errorf("failed to marshal platforms for %s: %w", film.Slug, err)
	}

	genresJSON, err := json.Marshal(film.Genres)
	if err != nil {
		return fmt.Errorf("failed to marshal genres for %s: %w", film.Slug, err)
	}

	query := `
		INSERT INTO films
			(letterboxd_slug, title, year, tmdb_id, tmdb_status,
			 poster_url, genres, streaming_platforms, watch_link,
			 country, last_checked, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(letterboxd_slug) DO UPDATE SET
			title               = excluded.title,
			year                = excluded.year,
			tmdb_id             = excluded.tmdb_id,
			tmdb_status         = excluded.tmdb_status,
			poster_url          = excluded.poster_url,
			genres              = excluded.genres,
			streaming_platforms = excluded.streaming_platforms,
			watch_link          = excluded.watch_link,
			country             = excluded.country,
			last_checked        = excluded.last_checked,
			source              = excluded.source
	`

	_, err = r.db.ExecContext(ctx, query,
		film.Slug,
		film.Title,
		film.Year,
		film.TMDBID,
		string(film.Status),
		film.PosterURL,
		string(genresJSON),
		string(platformsJSON),
		film.WatchLink,
		film.Country,
		film.LastChecked,
		film.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert film %s: %w", film.Slug, err)
	}

	return nil
}

// GetBySlug retrieves one film by its Letterboxd slug.
func (r *FilmRepository) GetBySlug(ctx context.Context, slug string) (*models.Film, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" FROM films WHERE letterboxd_slug = ?", slug)

	film, err := scanFilm(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("film %s not found: %w", slug, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get film %s: %w", slug, err)
	}

	return film, nil
}

// All retrieves every cached film ordered by title.
func (r *FilmRepository) All(ctx context.Context) ([]models.Film, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+" FROM films ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	defer rows.Close()

	var films []models.Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan film row: %w", err)
		}
		films = append(films, *film)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate films: %w", err)
	}

	return films, nil
}

// DeleteNotIn removes rows whose slug is no longer on the watchlist.
//
// Called by the coordinator after a successful cycle so films removed from
// the watchlist leave the cache. An empty slug list clears the table.
func (r *FilmRepository) DeleteNotIn(ctx context.Context, slugs []string) (int64, error) {
	if len(slugs) == 0 {
		result, err := r.db.ExecContext(ctx, "DELETE FROM films")
		if err != nil {
			return 0, fmt.Errorf("failed to clear films: %w", err)
		}
		return result.RowsAffected()
	}

	placeholders := strings.Repeat("?,", len(slugs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(slugs))
	for i, slug := range slugs {
		args[i] = slug
	}

	query := fmt.Sprintf("DELETE FROM films WHERE letterboxd_slug NOT IN (%s)", placeholders)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune films: %w", err)
	}

	return result.RowsAffected()
}

// LastChecked returns the most recent last_checked stamp across the cache,
// or "" when the cache is empty. The web surface reports this as "data as of".
func (r *FilmRepository) LastChecked(ctx context.Context) (string, error) {
	var stamp sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT MAX(last_checked) FROM films").Scan(&stamp)
	if err != nil {
		return "", fmt.Errorf("failed to query last checked: %w", err)
	}

	return stamp.String, nil
}

// Count returns the number of cached films.
func (r *FilmRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM films").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count films: %w", err)
	}
	return count, nil
}

const selectColumns = `
	SELECT id, letterboxd_slug, title, year, tmdb_id, tmdb_status,
	       poster_url, genres, streaming_platforms, watch_link,
	       country, last_checked, source`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanFilm reads one film row, decoding the JSON-encoded nested sequences
// into their structured types at the storage boundary.
func scanFilm(s scanner) (*models.Film, error) {
	var (
		film          models.Film
		year          sql.NullInt64
		tmdbID        sql.NullInt64
		posterURL     sql.NullString
		genresJSON    sql.NullString
		platformsJSON sql.NullString
		watchLink     sql.NullString
		country       sql.NullString
		lastChecked   sql.NullString
	)

	err := s.Scan(
		&film.ID,
		&film.Slug,
		&film.Title,
		&year,
		&tmdbID,
		(*string)(&film.Status),
		&posterURL,
		&genresJSON,
		&platformsJSON,
		&watchLink,
		&country,
		&lastChecked,
		&film.Source,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		v := int(year.Int64)
		film.Year = &v
	}
	if tmdbID.Valid {
		v := int(tmdbID.Int64)
		film.TMDBID = &v
	}
	film.PosterURL = posterURL.String
	film.WatchLink = watchLink.String
	film.Country = country.String
	film.LastChecked = lastChecked.String

	if genresJSON.Valid && genresJSON.String != "" {
		if err := json.Unmarshal([]byte(genresJSON.String), &film.Genres); err != nil {
			return nil, fmt.Errorf("corrupt genres for %s: %w", film.Slug, err)
		}
	}
	if platformsJSON.Valid && platformsJSON.String != "" {
		if err := json.Unmarshal([]byte(platformsJSON.String), &film.Platforms); err != nil {
			return nil, fmt.Errorf("corrupt platforms for %s: %w", film.Slug, err)
		}
	}

	return &film, nil
}
