package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lbxd/internal/formatter"
	"github.com/desertthunder/lbxd/internal/shared"
	"github.com/desertthunder/lbxd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Refresh runs one refresh cycle in the foreground and prints a summary.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	username := cmd.String("username")
	if username == "" {
		username = config.Letterboxd.Username
	}
	if username == "" {
		return fmt.Errorf("%w: set letterboxd.username in config or pass --username", shared.ErrMissingUsername)
	}

	region := cmd.String("region")
	if region == "" {
		region = config.TMDB.Region
	}

	if config.TMDB.APIKey == "" && r.metadata == nil {
		return fmt.Errorf("%w: set tmdb.api_key in config", shared.ErrMissingAPIKey)
	}

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	engine := r.buildEngine(config, repo)

	var progress chan tasks.ProgressUpdate
	done := make(chan struct{})
	if !cmd.Bool("quiet") && !cmd.Bool("json") {
		progress = make(chan tasks.ProgressUpdate, 64)
		go func() {
			defer close(done)
			for update := range progress {
				r.writePlain("[%s] %s\n", update.Phase, update.Message)
			}
		}()
	} else {
		close(done)
	}

	result, err := engine.Run(ctx, progress, username, region)
	if progress != nil {
		close(progress)
	}
	<-done
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	return r.writePlain("%s", formatter.RenderSummary(result))
}
