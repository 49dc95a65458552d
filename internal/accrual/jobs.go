package accrual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Minute

var errAlreadyProcessed = errors.New("employee already processed for period")

type JobsConfig struct {
	Transactor Transactor
	Directory  Directory
	Policies   PolicySource
	Holders    BalanceHolders
	Locker     Locker
	Publisher  events.Publisher
	LockTTL    time.Duration
	Logger     *slog.Logger
}

// Jobs runs the balance batch jobs. Each employee is processed in its own
// transaction that first claims the (job, period, employee) marker, so a
// repeated run for the same period skips everyone already done.
type Jobs struct {
	tx        Transactor
	directory Directory
	policies  PolicySource
	holders   BalanceHolders
	locker    Locker
	publisher events.Publisher
	lockTTL   time.Duration
	logger    *slog.Logger
}

func NewJobs(cfg JobsConfig) *Jobs {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Jobs{
		tx:        cfg.Transactor,
		directory: cfg.Directory,
		policies:  cfg.Policies,
		holders:   cfg.Holders,
		locker:    cfg.Locker,
		publisher: cfg.Publisher,
		lockTTL:   ttl,
		logger:    cfg.Logger,
	}
}

// RunMonthlyAccrual credits every employee with the accrual of each policy
// for their role, capped at the policy's annual maximum.
func (j *Jobs) RunMonthlyAccrual(ctx context.Context, now time.Time) (*Report, error) {
	return j.run(ctx, JobMonthlyAccrual, MonthlyPeriod(now), func(ctx context.Context, report *Report) error {
		employees, err := j.directory.ListEmployees(ctx)
		if err != nil {
			return err
		}

		byRole := make(map[employee.Role][]balance.Accrual)
		for _, emp := range employees {
			accruals, ok := byRole[emp.Role]
			if !ok {
				policies, err := j.policies.PoliciesForRole(ctx, emp.Role)
				if err != nil {
					j.logger.Error("failed to load policies", "role", emp.Role, "error", err)
					report.Failed++
					continue
				}
				accruals = toAccruals(policies)
				byRole[emp.Role] = accruals
			}
			if len(accruals) == 0 {
				continue
			}

			j.processEmployee(ctx, report, emp.ID, func(tx Tx) error {
				delta, err := tx.Ledger.ApplyAccruals(ctx, emp.ID, accruals)
				if err != nil {
					return err
				}
				j.logger.Debug("accrued leave", "employee_id", emp.ID, "delta", delta)
				return nil
			})
		}
		return nil
	})
}

// RunAnnualCarryForward zeroes every balance whose leave type does not carry
// forward and recomputes each affected employee's total.
func (j *Jobs) RunAnnualCarryForward(ctx context.Context, now time.Time) (*Report, error) {
	return j.run(ctx, JobAnnualCarryForward, AnnualPeriod(now), func(ctx context.Context, report *Report) error {
		ids, err := j.holders.EmployeeIDsWithBalances(ctx)
		if err != nil {
			return err
		}

		for _, id := range ids {
			employeeID := id
			j.processEmployee(ctx, report, employeeID, func(tx Tx) error {
				total, err := tx.Ledger.ResetNonCarryForward(ctx, employeeID)
				if err != nil {
					return err
				}
				j.logger.Debug("carried forward leave", "employee_id", employeeID, "total_leave_balance", total)
				return nil
			})
		}
		return nil
	})
}

func (j *Jobs) run(ctx context.Context, job, period string, body func(context.Context, *Report) error) (*Report, error) {
	release, err := j.locker.Acquire(ctx, "leave:jobs:"+job, j.lockTTL)
	if err != nil {
		if errors.Is(err, internal.ErrJobAlreadyRunning) {
			j.logger.Warn("balance job already running elsewhere", "job", job, "period", period)
			return nil, err
		}
		return nil, fmt.Errorf("acquire %s lock: %w", job, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("failed to release job lock", "job", job, "error", err)
		}
	}()

	report := &Report{Job: job, RunID: uuid.NewString(), Period: period}
	j.logger.Info("balance job started", "job", job, "run_id", report.RunID, "period", period)
	start := time.Now()

	if err := body(ctx, report); err != nil {
		j.logger.Error("balance job aborted", "job", job, "run_id", report.RunID, "error", err)
		return report, fmt.Errorf("%s: %w", job, err)
	}

	j.logger.Info("balance job finished",
		"job", job,
		"run_id", report.RunID,
		"period", period,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", time.Since(start))

	if j.publisher != nil {
		event := events.NewBalanceJobCompletedEvent(job, report.RunID, period, report.Processed, report.Skipped, report.Failed)
		if err := j.publisher.Publish(ctx, event); err != nil {
			j.logger.Warn("failed to publish job completion", "job", job, "error", err)
		}
	}
	return report, nil
}

// processEmployee never fails the run; a failing employee is rolled back,
// logged and counted.
func (j *Jobs) processEmployee(ctx context.Context, report *Report, employeeID int64, apply func(tx Tx) error) {
	err := j.tx.WithinTx(ctx, func(tx Tx) error {
		claimed, err := tx.Runs.Claim(ctx, report.Job, report.Period, employeeID, report.RunID)
		if err != nil {
			return fmt.Errorf("claim run marker: %w", err)
		}
		if !claimed {
			return errAlreadyProcessed
		}
		return apply(tx)
	})

	switch {
	case err == nil:
		report.Processed++
	case errors.Is(err, errAlreadyProcessed):
		report.Skipped++
	default:
		report.Failed++
		j.logger.Error("balance job failed for employee", "job", report.Job, "employee_id", employeeID, "error", err)
	}
}

func toAccruals(policies []leavetype.Policy) []balance.Accrual {
	accruals := make([]balance.Accrual, 0, len(policies))
	for _, p := range policies {
		accruals = append(accruals, balance.Accrual{
			LeaveTypeID: p.LeaveTypeID,
			Amount:      p.AccrualPerMonth,
			Cap:         p.MaxDaysPerYear,
		})
	}
	return accruals
}
