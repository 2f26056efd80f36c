package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lbxd/internal/formatter"
	"github.com/desertthunder/lbxd/internal/shared"
	"github.com/urfave/cli/v3"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// FilmsList prints the cached watchlist.
func (r *Runner) FilmsList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	films, err := repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load films: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(films, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.RenderList(films, config.Letterboxd.Username))
}

// FilmsExport writes the cached watchlist to a file in the requested format.
func (r *Runner) FilmsExport(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	format := cmd.String("format")
	output := cmd.String("output")

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	films, err := repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load films: %w", err)
	}

	username := config.Letterboxd.Username

	var written string
	switch format {
	case "csv":
		written, err = formatter.WriteCSVExport(films, output)
	case "markdown", "md":
		written, err = formatter.WriteMarkdownExport(films, username, output)
	case "text", "txt":
		written, err = formatter.WriteTextExport(films, username, output)
	case "json":
		if output == "" {
			output = "watchlist.json"
		}
		var data []byte
		if data, err = formatter.ToJSON(films, true); err == nil {
			err = writeFile(output, data)
			written = output
		}
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Exported %d films to %s\n", len(films), written)
	return nil
}
