package balance

import (
	"context"

	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

// Repository is bound to one transaction. Every Ledger mutation first locks
// the owning employee row and then the balance row.
type Repository interface {
	LockEmployee(ctx context.Context, employeeID int64) (*employeeDatamodel.Employee, error)
	FindForUpdate(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error)
	Find(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error)
	Insert(ctx context.Context, b *leaveDatamodel.LeaveBalance) error
	SetBalance(ctx context.Context, id int64, balance int) error
	ListByEmployee(ctx context.Context, employeeID int64) ([]*leaveDatamodel.LeaveBalance, error)
	SumByEmployee(ctx context.Context, employeeID int64) (int, error)
	AddToEmployeeTotal(ctx context.Context, employeeID int64, delta int) error
	SetEmployeeTotal(ctx context.Context, employeeID int64, total int) error
	ResetNonCarryForward(ctx context.Context, employeeID int64) (int64, error)
	EmployeeIDsWithBalances(ctx context.Context) ([]int64, error)
}

// Accrual is one policy line applied by the monthly job.
type Accrual struct {
	LeaveTypeID int64
	Amount      int
	Cap         int
}
