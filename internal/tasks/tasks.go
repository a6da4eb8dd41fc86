// Package tasks runs the periodic background jobs: statistics and portal
// posts, donation polling and news.
package tasks

import (
	"context"
	"fmt"
	"time"

	"overbot/internal/config"
	"overbot/internal/constants"
	"overbot/internal/metrics"
	"overbot/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is one job run every Interval, first right after Start.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Runner struct {
	debug   bool
	premium *service.PremiumCache
	tasks   []Task
	logger  zerolog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewRunner(
	cfg *config.Config,
	telemetry *service.TelemetryService,
	subscriptions *service.SubscriptionService,
	news *service.NewsService,
	premium *service.PremiumCache,
	logger zerolog.Logger,
) *Runner {
	tasks := []Task{
		{Name: "statistics", Interval: constants.StatisticsInterval, Run: telemetry.PostStatistics},
		{Name: "portals", Interval: constants.PortalsInterval, Run: telemetry.PostPortals},
		{Name: "subscriptions", Interval: constants.SubscriptionInterval, Run: func(ctx context.Context) error {
			_, err := subscriptions.Poll(ctx)
			return err
		}},
		{Name: "news", Interval: constants.NewsInterval, Run: func(ctx context.Context) error {
			_, err := news.Poll(ctx)
			return err
		}},
	}
	return newRunner(cfg.Debug, premium, tasks, logger)
}

func newRunner(debug bool, premium *service.PremiumCache, tasks []Task, logger zerolog.Logger) *Runner {
	return &Runner{
		debug:   debug,
		premium: premium,
		tasks:   tasks,
		logger:  logger.With().Str("component", "tasks").Logger(),
	}
}

// Start loads the premium cache and starts every task loop. The loops are
// not started in debug mode.
func (r *Runner) Start(ctx context.Context) error {
	if r.premium != nil {
		if err := r.premium.Load(ctx); err != nil {
			return fmt.Errorf("failed to load premium cache: %w", err)
		}
	}

	if r.debug {
		r.logger.Info().Msg("debug mode, background tasks disabled")
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.group, loopCtx = errgroup.WithContext(loopCtx)

	for _, task := range r.tasks {
		r.group.Go(func() error {
			r.loop(loopCtx, task)
			return nil
		})
	}

	r.logger.Info().Int("tasks", len(r.tasks)).Msg("background tasks started")
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		_ = r.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info().Msg("background tasks stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		r.runOnce(ctx, task)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runOnce runs a single iteration. A failure is logged and the loop goes on.
func (r *Runner) runOnce(ctx context.Context, task Task) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		metrics.TaskRuns.WithLabelValues(task.Name, "error").Inc()
		r.logger.Warn().Err(err).Str("task", task.Name).Msg("task failed")
		return
	}

	metrics.TaskRuns.WithLabelValues(task.Name, "ok").Inc()
	r.logger.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("task run")
}
