package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/lbxd/internal/shared"
)

func TestTMDBService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewTMDBService", func(t *testing.T) {
		if svc := NewTMDBService("", "key"); svc.baseURL != defaultTMDBBaseURL {
			t.Errorf("expected baseURL %s, got %s", defaultTMDBBaseURL, svc.baseURL)
		}

		customURL := "http://localhost:9000"
		if svc := NewTMDBService(customURL, "key"); svc.baseURL != customURL {
			t.Errorf("expected baseURL %s, got %s", customURL, svc.baseURL)
		}
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewTMDBService("", "key"); svc.Name() != "TMDB" {
			t.Errorf("expected name TMDB, got %s", svc.Name())
		}
	})

	t.Run("SearchMovie", func(t *testing.T) {
		t.Run("returns first candidate", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search/movie" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("api_key"); got != "test_key" {
					t.Errorf("expected api_key test_key, got %s", got)
				}
				if got := r.URL.Query().Get("query"); got != "Oppenheimer" {
					t.Errorf("expected query Oppenheimer, got %s", got)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"results": []map[string]any{
						{"id": 872585, "title": "Oppenheimer"},
						{"id": 11111, "title": "Oppenheimer (1980)"},
					},
				})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			id, found, err := svc.SearchMovie(ctx, "Oppenheimer")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !found {
				t.Fatal("expected a match")
			}
			if id != 872585 {
				t.Errorf("expected id 872585, got %d", id)
			}
		})

		t.Run("no candidates", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			_, found, err := svc.SearchMovie(ctx, "definitely not a film")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if found {
				t.Error("expected no match")
			}
		})

		t.Run("server error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnauthorized)
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "bad_key")
			_, _, err := svc.SearchMovie(ctx, "Dune")
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected ErrTransport, got %v", err)
			}
		})

		t.Run("malformed body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>maintenance</html>"))
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			_, _, err := svc.SearchMovie(ctx, "Dune")
			if !errors.Is(err, shared.ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	})

	t.Run("MovieDetails", func(t *testing.T) {
		t.Run("resolves poster and year", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/movie/438631" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"id":           438631,
					"title":        "Dune",
					"poster_path":  "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg",
					"release_date": "2021-10-22",
					"genres": []map[string]any{
						{"id": 878, "name": "Science Fiction"},
						{"id": 12, "name": "Adventure"},
					},
				})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			details, err := svc.MovieDetails(ctx, 438631)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			wantPoster := defaultTMDBImageURL + "/w300/d5NXSklXo0qyIYkgV94XAgMIckC.jpg"
			if details.PosterURL != wantPoster {
				t.Errorf("expected poster %s, got %s", wantPoster, details.PosterURL)
			}

			if details.Year == nil || *details.Year != 2021 {
				t.Errorf("expected year 2021, got %v", details.Year)
			}

			if len(details.Genres) != 2 || details.Genres[0] != "Science Fiction" {
				t.Errorf("unexpected genres %v", details.Genres)
			}
		})

		t.Run("missing poster and date", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"id": 1, "title": "Obscure"})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			details, err := svc.MovieDetails(ctx, 1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if details.PosterURL != "" {
				t.Errorf("expected empty poster URL, got %s", details.PosterURL)
			}
			if details.Year != nil {
				t.Errorf("expected nil year, got %d", *details.Year)
			}
		})
	})

	t.Run("MovieProviders", func(t *testing.T) {
		t.Run("reads only the flatrate tier for the region", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/movie/872585/watch/providers" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"results": map[string]any{
						"GB": map[string]any{
							"link": "https://www.themoviedb.org/movie/872585/watch?locale=GB",
							"flatrate": []map[string]any{
								{"provider_id": 8, "provider_name": "Netflix", "logo_path": "/netflix.jpg"},
							},
							"rent": []map[string]any{
								{"provider_id": 10, "provider_name": "Amazon Video", "logo_path": "/amazon.jpg"},
							},
						},
						"US": map[string]any{
							"flatrate": []map[string]any{
								{"provider_id": 531, "provider_name": "Paramount Plus"},
							},
						},
					},
				})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			offers, err := svc.MovieProviders(ctx, 872585, "GB")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(offers.Platforms) != 1 {
				t.Fatalf("expected 1 platform, got %d", len(offers.Platforms))
			}

			p := offers.Platforms[0]
			if p.ProviderID != 8 || p.ProviderName != "Netflix" {
				t.Errorf("unexpected platform %+v", p)
			}

			wantLogo := defaultTMDBImageURL + "/w45/netflix.jpg"
			if p.LogoPath != wantLogo {
				t.Errorf("expected logo %s, got %s", wantLogo, p.LogoPath)
			}

			if offers.WatchLink == "" {
				t.Error("expected watch link to be set")
			}
		})

		t.Run("region not present", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"results": map[string]any{}})
			}))
			defer server.Close()

			svc := NewTMDBService(server.URL, "test_key")
			offers, err := svc.MovieProviders(ctx, 872585, "GB")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(offers.Platforms) != 0 || offers.WatchLink != "" {
				t.Errorf("expected empty offers, got %+v", offers)
			}
		})
	})

	t.Run("releaseYear", func(t *testing.T) {
		tc := []struct {
			date string
			want *int
		}{
			{"2021-10-22", intPtr(2021)},
			{"1999", intPtr(1999)},
			{"", nil},
			{"soo", nil},
		}

		for _, tt := range tc {
			got := releaseYear(tt.date)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("releaseYear(%q) = %d, want nil", tt.date, *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("releaseYear(%q) = %v, want %d", tt.date, got, *tt.want)
			}
		}
	})
}

func intPtr(v int) *int { return &v }
