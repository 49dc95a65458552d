package accrual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/robfig/cron/v3"
)

type Runner interface {
	RunMonthlyAccrual(ctx context.Context, now time.Time) (*Report, error)
	RunAnnualCarryForward(ctx context.Context, now time.Time) (*Report, error)
}

// Scheduler fires the balance jobs on their cron specs in the configured
// timezone.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func NewScheduler(cfg internal.SchedulerConfig, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	loc := cfg.Location()
	cronLogger := cronLogAdapter{logger: logger}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   c,
		runner: runner,
		loc:    loc,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	if _, err := c.AddFunc(cfg.MonthlyAccrualSpec, s.job(JobMonthlyAccrual, runner.RunMonthlyAccrual)); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid monthly accrual spec %q: %w", cfg.MonthlyAccrualSpec, err)
	}
	if _, err := c.AddFunc(cfg.AnnualCarryForwardSpec, s.job(JobAnnualCarryForward, runner.RunAnnualCarryForward)); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid carry forward spec %q: %w", cfg.AnnualCarryForwardSpec, err)
	}
	return s, nil
}

func (s *Scheduler) job(name string, run func(context.Context, time.Time) (*Report, error)) func() {
	return func() {
		now := time.Now().In(s.loc)
		if _, err := run(s.ctx, now); err != nil {
			if errors.Is(err, internal.ErrJobAlreadyRunning) {
				return
			}
			s.logger.Error("scheduled balance job failed", "job", name, "error", err)
		}
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("balance job scheduler started", "timezone", s.loc.String(), "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.logger.Info("balance job scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries exposes the next fire times, for the worker's startup log.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

type cronLogAdapter struct {
	logger *slog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
