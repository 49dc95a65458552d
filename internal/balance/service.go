package balance

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
)

type EmployeeFinder interface {
	FindEmployee(ctx context.Context, id int64) (*employee.Employee, error)
}

type LeaveTypeLister interface {
	ListLeaveTypes(ctx context.Context) ([]*leavetype.LeaveType, error)
}

// Service serves balance reads outside of any transaction.
type Service struct {
	repo       Repository
	employees  EmployeeFinder
	leaveTypes LeaveTypeLister
	logger     *slog.Logger
}

func NewService(repo Repository, employees EmployeeFinder, leaveTypes LeaveTypeLister, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		employees:  employees,
		leaveTypes: leaveTypes,
		logger:     logger,
	}
}

// Balances maps every leave type name to the employee's balance, zero for
// types that have no row yet.
func (s *Service) Balances(ctx context.Context, employeeID int64) (map[string]int, error) {
	if _, err := s.employees.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	types, err := s.leaveTypes.ListLeaveTypes(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to load balances", "employee_id", employeeID, "error", err)
		return nil, internal.NewInternalError("failed to load leave balances", err)
	}

	byType := make(map[int64]int, len(rows))
	for _, row := range rows {
		byType[row.LeaveTypeID] = row.Balance
	}

	balances := make(map[string]int, len(types))
	for _, t := range types {
		balances[t.Name] = byType[t.ID]
	}
	return balances, nil
}
