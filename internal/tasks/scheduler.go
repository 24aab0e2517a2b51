package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// ParseSchedule validates a five-field cron expression or descriptor such as
// "@daily" or "@every 6h".
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", shared.ErrInvalidSchedule, spec, err)
	}
	return schedule, nil
}

// Scheduler runs a [Job] on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	logger   *log.Logger
}

// NewScheduler parses spec and returns a scheduler for it.
func NewScheduler(spec string, logger *log.Logger) (*Scheduler, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Scheduler{spec: spec, schedule: schedule, logger: logger}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run executes job on every activation until ctx is done, then waits for a
// running job to return. A failing job is logged and does not stop the schedule.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	c.Schedule(s.schedule, cron.FuncJob(func() {
		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled sync failed", "error", err)
		} else {
			s.logger.Info("scheduled sync finished", "duration", time.Since(start).Round(time.Millisecond))
		}
		s.logger.Info("next sync", "at", s.Next(time.Now()).Format(time.RFC3339))
	}))

	s.logger.Info("scheduler started", "schedule", s.spec, "next", s.Next(time.Now()).Format(time.RFC3339))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts a charm logger to [cron.Logger].
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
