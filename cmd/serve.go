package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/lbxd/internal/server"
	"github.com/desertthunder/lbxd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the web server and, unless disabled, the interval refresh job.
//
// Shuts down cleanly on SIGINT/SIGTERM: the scheduler stops first, then the
// HTTP server drains with a timeout. A refresh cycle in flight runs to
// completion.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	engine := r.buildEngine(config, repo)
	username := config.Letterboxd.Username
	region := config.TMDB.Region

	handler, err := server.NewFilmHandler(repo, engine, username, region, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	port := int(cmd.Int("port"))
	if port == 0 {
		port = config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", config.Server.Host, port)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var scheduler *tasks.Scheduler
	if config.Refresh.Enabled && !cmd.Bool("no-scheduler") {
		interval, err := config.Refresh.IntervalDuration()
		if err != nil {
			return err
		}
		scheduler = tasks.NewScheduler(engine, interval, username, region, r.logger)
		scheduler.Start(runCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		r.logger.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
