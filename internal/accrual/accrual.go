package accrual

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
)

const (
	JobMonthlyAccrual     = "monthly_accrual"
	JobAnnualCarryForward = "annual_carry_forward"
)

// RunLedger records which employees a job already processed for a period.
type RunLedger interface {
	// Claim inserts the marker and reports false when it already existed.
	Claim(ctx context.Context, job, period string, employeeID int64, runID string) (bool, error)
}

// Tx holds the stores one employee is processed with, bound to a single
// transaction.
type Tx struct {
	Runs   RunLedger
	Ledger *balance.Ledger
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type Directory interface {
	ListEmployees(ctx context.Context) ([]*employee.Employee, error)
}

type PolicySource interface {
	PoliciesForRole(ctx context.Context, role employee.Role) ([]leavetype.Policy, error)
}

type BalanceHolders interface {
	EmployeeIDsWithBalances(ctx context.Context) ([]int64, error)
}

// Locker guards a job against running on two instances at once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type Report struct {
	Job       string `json:"job"`
	RunID     string `json:"run_id"`
	Period    string `json:"period"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// MonthlyPeriod and AnnualPeriod name the idempotency window of each job.
func MonthlyPeriod(t time.Time) string {
	return t.Format("2006-01")
}

func AnnualPeriod(t time.Time) string {
	return t.Format("2006")
}
