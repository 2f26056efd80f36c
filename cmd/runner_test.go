package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/repositories"
	"github.com/desertthunder/lbxd/internal/services"
	"github.com/desertthunder/lbxd/internal/shared"
	tu "github.com/desertthunder/lbxd/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			watchlist := &tu.MockWatchlist{}
			metadata := &tu.MockMetadata{}

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Logger:    logger,
				Output:    output,
				Watchlist: watchlist,
				Metadata:  metadata,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.watchlist != services.WatchlistSource(watchlist) {
				t.Error("expected watchlist to be set")
			}
			if runner.metadata != services.MetadataSource(metadata) {
				t.Error("expected metadata to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register returns all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 4 {
			t.Fatalf("expected 4 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "refresh", "films", "serve"} {
			if !names[want] {
				t.Errorf("missing command %s", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), `"key":"value"`) {
			t.Errorf("unexpected output: %s", output.String())
		}

		runner.output = &tu.FWriter{}
		if err := runner.writeJSON(map[string]string{}, false); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

// setupRunner builds a Runner wired against an in-memory database and test doubles.
func setupRunner(t *testing.T, watchlist *tu.MockWatchlist, metadata *tu.MockMetadata) (*Runner, *bytes.Buffer, *repositories.FilmRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:    shared.DefaultConfig(),
		Watchlist: watchlist,
		Metadata:  metadata,
		Output:    output,
		DB:        db,
	})
	return runner, output, repositories.NewFilmRepository(db)
}

// runCommand executes a CLI action through a minimal app so flag parsing works.
func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "lbxd",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"lbxd"}, args...))
}

func TestRefreshCommand(t *testing.T) {
	t.Run("runs a cycle and prints the summary", func(t *testing.T) {
		watchlist := &tu.MockWatchlist{Films: []models.ScrapedFilm{
			{Slug: "oppenheimer-2023", Title: "Oppenheimer"},
		}}
		metadata := &tu.MockMetadata{
			SearchFunc: func(title string) (int, bool, error) {
				return 872585, true, nil
			},
		}
		runner, output, repo := setupRunner(t, watchlist, metadata)

		if err := runCommand(t, runner, "refresh", "--username", "cinephile", "--quiet"); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}

		if !strings.Contains(output.String(), "Refresh complete") {
			t.Errorf("missing summary, got: %s", output.String())
		}

		film, err := repo.GetBySlug(context.Background(), "oppenheimer-2023")
		if err != nil {
			t.Fatalf("film not persisted: %v", err)
		}
		if film.Status != models.StatusFound {
			t.Errorf("expected status found, got %s", film.Status)
		}
	})

	t.Run("emits JSON with --json", func(t *testing.T) {
		watchlist := &tu.MockWatchlist{Films: []models.ScrapedFilm{
			{Slug: "dune-2021", Title: "Dune"},
		}}
		runner, output, _ := setupRunner(t, watchlist, &tu.MockMetadata{})

		if err := runCommand(t, runner, "refresh", "--username", "cinephile", "--json"); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if !strings.Contains(output.String(), `"Scraped": 1`) {
			t.Errorf("missing JSON summary, got: %s", output.String())
		}
	})

	t.Run("fails without a username", func(t *testing.T) {
		runner, _, _ := setupRunner(t, &tu.MockWatchlist{}, &tu.MockMetadata{})
		runner.config.Letterboxd.Username = ""

		if err := runCommand(t, runner, "refresh"); err == nil {
			t.Error("expected error for missing username")
		}
	})
}

func TestFilmsCommands(t *testing.T) {
	seed := func(t *testing.T, repo *repositories.FilmRepository) {
		t.Helper()
		film := models.NewFilm(models.ScrapedFilm{Slug: "heat-1995", Title: "Heat"}, "GB")
		film.Status = models.StatusNotFound
		if err := repo.Upsert(context.Background(), film); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	t.Run("list prints cached films", func(t *testing.T) {
		runner, output, repo := setupRunner(t, &tu.MockWatchlist{}, &tu.MockMetadata{})
		seed(t, repo)

		if err := runCommand(t, runner, "films", "list"); err != nil {
			t.Fatalf("films list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Heat") {
			t.Errorf("missing film, got: %s", output.String())
		}
	})

	t.Run("list emits JSON with --json", func(t *testing.T) {
		runner, output, repo := setupRunner(t, &tu.MockWatchlist{}, &tu.MockMetadata{})
		seed(t, repo)

		if err := runCommand(t, runner, "films", "list", "--json"); err != nil {
			t.Fatalf("films list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"letterboxd_slug":"heat-1995"`) {
			t.Errorf("missing JSON film, got: %s", output.String())
		}
	})

	t.Run("export writes a CSV file", func(t *testing.T) {
		runner, output, repo := setupRunner(t, &tu.MockWatchlist{}, &tu.MockMetadata{})
		seed(t, repo)

		path := filepath.Join(t.TempDir(), "films.csv")
		if err := runCommand(t, runner, "films", "export", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("films export failed: %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "heat-1995") {
			t.Error("CSV missing film")
		}
		if !strings.Contains(output.String(), "Exported 1 films") {
			t.Errorf("missing confirmation, got: %s", output.String())
		}
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		runner, _, _ := setupRunner(t, &tu.MockWatchlist{}, &tu.MockMetadata{})

		if err := runCommand(t, runner, "films", "export", "--format", "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates config and database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "lbxd.db")

		// Point the template-created config's database at the temp dir by
		// writing a config file up front.
		content := strings.ReplaceAll(string(tu.MustReadFile(t, "../internal/shared/config.example.toml")), "./lbxd.db", dbPath)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		if err := runCommand(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		tu.AssertFileExists(t, dbPath)
	})
}
