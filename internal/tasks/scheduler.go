package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbxd/internal/shared"
)

// Scheduler triggers a refresh cycle on a fixed interval.
//
// It calls the same Run entry point as the manual trigger; when a manually
// started cycle is still in flight at tick time the tick is skipped, not
// queued.
type Scheduler struct {
	engine   *RefreshEngine
	interval time.Duration
	username string
	region   string
	logger   *log.Logger

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a Scheduler around the given engine.
func NewScheduler(engine *RefreshEngine, interval time.Duration, username, region string, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Scheduler{
		engine:   engine,
		interval: interval,
		username: username,
		region:   region,
		logger:   logger,
	}
}

// Start launches the background ticker goroutine. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	if s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	s.logger.Info("scheduler started", "interval", s.interval)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the ticker and waits for the goroutine to exit. A cycle
// already in flight runs to completion.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}

	close(s.stop)
	<-s.done
	s.stop = nil
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.engine.Run(ctx, nil, s.username, s.region)
	if errors.Is(err, shared.ErrRefreshInProgress) {
		s.logger.Info("scheduled refresh skipped, another run in flight")
		return
	}
	if err != nil {
		s.logger.Error("scheduled refresh failed", "err", err)
	}
}
