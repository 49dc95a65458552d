package employee

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	FindByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	List(ctx context.Context) ([]*employeeDatamodel.Employee, error)
}

// Service is the read-only directory the leave engine consults.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) FindEmployee(ctx context.Context, id int64) (*Employee, error) {
	data, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load employee", "employee_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if data == nil {
		return nil, internal.ErrEmployeeNotFound
	}

	emp, err := FromDataModel(data)
	if err != nil {
		s.logger.Error("invalid employee record", "employee_id", id, "error", err)
		return nil, internal.NewInternalError("invalid employee record", err)
	}
	return emp, nil
}

// Hierarchy resolves the employee, their manager and the manager's manager.
// A dangling manager reference ends the chain instead of failing.
func (s *Service) Hierarchy(ctx context.Context, id int64) (*Hierarchy, error) {
	emp, err := s.FindEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	h := &Hierarchy{Employee: *emp}
	if emp.ManagerID == nil {
		return h, nil
	}

	h.Manager, err = s.optionalEmployee(ctx, *emp.ManagerID)
	if err != nil || h.Manager == nil || h.Manager.ManagerID == nil {
		return h, err
	}

	h.ManagerOfManager, err = s.optionalEmployee(ctx, *h.Manager.ManagerID)
	return h, err
}

func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		emp, err := FromDataModel(row)
		if err != nil {
			s.logger.Warn("skipping employee with invalid role", "employee_id", row.ID, "error", err)
			continue
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func (s *Service) optionalEmployee(ctx context.Context, id int64) (*Employee, error) {
	emp, err := s.FindEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			s.logger.Warn("manager reference points to a missing employee", "employee_id", id)
			return nil, nil
		}
		return nil, err
	}
	return emp, nil
}
