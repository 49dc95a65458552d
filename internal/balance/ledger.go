package balance

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

// Ledger applies balance mutations and keeps the employee's cached total in
// step with them. It must be built on a transaction-bound Repository.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Current reads the balance without locking. A missing row reads as zero.
func (l *Ledger) Current(ctx context.Context, employeeID, leaveTypeID int64) (int, error) {
	row, err := l.repo.Find(ctx, employeeID, leaveTypeID)
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Balance, nil
}

// Deduct removes days from the balance and from the cached total. It fails
// with ErrInsufficientBalance, leaving both untouched, when the balance would
// go negative.
func (l *Ledger) Deduct(ctx context.Context, employeeID, leaveTypeID int64, days int) (int, error) {
	if err := l.lockEmployee(ctx, employeeID); err != nil {
		return 0, err
	}

	row, err := l.repo.FindForUpdate(ctx, employeeID, leaveTypeID)
	if err != nil {
		return 0, fmt.Errorf("lock balance: %w", err)
	}
	current := 0
	if row != nil {
		current = row.Balance
	}
	if current-days < 0 {
		return current, internal.ErrInsufficientBalance
	}
	if days == 0 {
		return current, nil
	}

	if err := l.repo.SetBalance(ctx, row.ID, current-days); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}
	if err := l.repo.AddToEmployeeTotal(ctx, employeeID, -days); err != nil {
		return 0, fmt.Errorf("update employee total: %w", err)
	}
	return current - days, nil
}

// DeductClamped removes days but never below zero, creating the row when it
// does not exist yet. The cached total is recomputed from every balance row
// because the clamp makes an incremental update drift.
func (l *Ledger) DeductClamped(ctx context.Context, employeeID, leaveTypeID int64, days int) (int, error) {
	if err := l.lockEmployee(ctx, employeeID); err != nil {
		return 0, err
	}

	row, err := l.lockOrCreate(ctx, employeeID, leaveTypeID)
	if err != nil {
		return 0, err
	}

	next := row.Balance - days
	if next < 0 {
		next = 0
	}
	if err := l.repo.SetBalance(ctx, row.ID, next); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}
	if _, err := l.RecomputeTotal(ctx, employeeID); err != nil {
		return 0, err
	}
	return next, nil
}

// Accrue sets balance = min(balance + amount, maxDays), seeding a missing row
// at min(amount, maxDays). A row already above maxDays is lowered to it. It
// returns the signed change and does not touch the cached total;
// ApplyAccruals does that once per employee.
func (l *Ledger) Accrue(ctx context.Context, employeeID, leaveTypeID int64, amount, maxDays int) (int, error) {
	row, err := l.repo.FindForUpdate(ctx, employeeID, leaveTypeID)
	if err != nil {
		return 0, fmt.Errorf("lock balance: %w", err)
	}

	if row == nil {
		seed := min(amount, maxDays)
		if seed < 0 {
			seed = 0
		}
		err := l.repo.Insert(ctx, &leaveDatamodel.LeaveBalance{
			EmployeeID:  employeeID,
			LeaveTypeID: leaveTypeID,
			Balance:     seed,
		})
		if err != nil {
			return 0, fmt.Errorf("create balance: %w", err)
		}
		return seed, nil
	}

	next := max(min(row.Balance+amount, maxDays), 0)
	if next == row.Balance {
		return 0, nil
	}
	if err := l.repo.SetBalance(ctx, row.ID, next); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}
	return next - row.Balance, nil
}

// ApplyAccruals runs every accrual for one employee and applies the summed
// change to the cached total in a single update.
func (l *Ledger) ApplyAccruals(ctx context.Context, employeeID int64, accruals []Accrual) (int, error) {
	if err := l.lockEmployee(ctx, employeeID); err != nil {
		return 0, err
	}

	delta := 0
	for _, a := range accruals {
		n, err := l.Accrue(ctx, employeeID, a.LeaveTypeID, a.Amount, a.Cap)
		if err != nil {
			return 0, fmt.Errorf("accrue leave type %d: %w", a.LeaveTypeID, err)
		}
		delta += n
	}

	if delta != 0 {
		if err := l.repo.AddToEmployeeTotal(ctx, employeeID, delta); err != nil {
			return 0, fmt.Errorf("update employee total: %w", err)
		}
	}
	return delta, nil
}

// ResetNonCarryForward zeroes every balance of a non carry-forward type for
// the employee and stores the recomputed total, which it returns.
func (l *Ledger) ResetNonCarryForward(ctx context.Context, employeeID int64) (int, error) {
	if err := l.lockEmployee(ctx, employeeID); err != nil {
		return 0, err
	}
	if _, err := l.repo.ResetNonCarryForward(ctx, employeeID); err != nil {
		return 0, fmt.Errorf("reset balances: %w", err)
	}
	return l.RecomputeTotal(ctx, employeeID)
}

// RecomputeTotal stores the sum of the employee's balances as the cached
// total. Callers must hold the employee lock.
func (l *Ledger) RecomputeTotal(ctx context.Context, employeeID int64) (int, error) {
	total, err := l.repo.SumByEmployee(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	if err := l.repo.SetEmployeeTotal(ctx, employeeID, total); err != nil {
		return 0, fmt.Errorf("update employee total: %w", err)
	}
	return total, nil
}

func (l *Ledger) lockEmployee(ctx context.Context, employeeID int64) error {
	emp, err := l.repo.LockEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("lock employee: %w", err)
	}
	if emp == nil {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

func (l *Ledger) lockOrCreate(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error) {
	row, err := l.repo.FindForUpdate(ctx, employeeID, leaveTypeID)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	if row != nil {
		return row, nil
	}

	row = &leaveDatamodel.LeaveBalance{EmployeeID: employeeID, LeaveTypeID: leaveTypeID}
	if err := l.repo.Insert(ctx, row); err != nil {
		return nil, fmt.Errorf("create balance: %w", err)
	}
	return row, nil
}
