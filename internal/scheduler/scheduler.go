// Package scheduler drives the publication engine on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/daypulse/bot/internal/core/ports"
	"github.com/daypulse/bot/internal/core/services"
)

// Scheduler ticks the publish and overdue sweeps. Sweep errors are logged and
// the loop keeps running, except when the engine reports its queue unreadable,
// which calls the injected shutdown func.
type Scheduler struct {
	schedule ports.ScheduleService
	interval time.Duration
	shutdown func()
	logger   *slog.Logger

	cron *cron.Cron
}

func New(schedule ports.ScheduleService, interval time.Duration, shutdown func(), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdown == nil {
		shutdown = func() {}
	}
	return &Scheduler{
		schedule: schedule,
		interval: interval,
		shutdown: shutdown,
		logger:   logger,
	}
}

// Run starts the tick loop and blocks until ctx is cancelled, then waits for
// an in-flight tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron = cron.New()

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to register tick: %w", err)
	}

	s.logger.InfoContext(ctx, "scheduler started", "interval", s.interval.String())
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	if err := s.schedule.PublishDue(ctx, now); err != nil {
		if s.fatal(ctx, err) {
			return
		}
		s.logger.ErrorContext(ctx, "publish sweep failed", "error", err)
	}

	if err := s.schedule.SweepOverdue(ctx, now); err != nil {
		if s.fatal(ctx, err) {
			return
		}
		s.logger.ErrorContext(ctx, "overdue sweep failed", "error", err)
	}
}

func (s *Scheduler) fatal(ctx context.Context, err error) bool {
	if !errors.Is(err, services.ErrQueueUnavailable) {
		return false
	}
	s.logger.ErrorContext(ctx, "scheduler queue unreadable, shutting down", "error", err)
	s.shutdown()
	return true
}
