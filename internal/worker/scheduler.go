package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule runs the sweep daily at midnight.
const DefaultSchedule = "0 0 * * *"

// Runner produces an overview.
type Runner interface {
	Run(ctx context.Context) (*Overview, error)
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Job      Runner
	Schedule string
	Logger   zerolog.Logger
}

// Scheduler runs a job on a cron schedule and keeps the latest result.
type Scheduler struct {
	job    Runner
	cron   *cron.Cron
	logger zerolog.Logger
	latest atomic.Pointer[Overview]
}

// NewScheduler validates the schedule and registers the job. It does not
// start anything.
func NewScheduler(ctx context.Context, cfg SchedulerConfig) (*Scheduler, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Scheduler{
		job:    cfg.Job,
		cron:   cron.New(),
		logger: cfg.Logger.With().Str("component", "scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc(schedule, func() { _ = s.RunNow(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the job once in the background and then on schedule.
func (s *Scheduler) Start(ctx context.Context) {
	go func() { _ = s.RunNow(ctx) }()
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop halts scheduling. The returned context is done once any running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info().Msg("scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the job synchronously and publishes its result.
func (s *Scheduler) RunNow(ctx context.Context) error {
	overview, err := s.job.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep failed, keeping previous overview")
		return err
	}
	s.latest.Store(overview)
	return nil
}

// Latest returns the most recent overview, or nil before the first
// successful run.
func (s *Scheduler) Latest() *Overview {
	return s.latest.Load()
}
