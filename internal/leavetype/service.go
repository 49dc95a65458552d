package leavetype

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/employee"
)

type RepositoryAPI interface {
	FindByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	List(ctx context.Context) ([]*leaveDatamodel.LeaveType, error)
	PoliciesForRole(ctx context.Context, role string) ([]*leaveDatamodel.LeavePolicy, error)
}

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

func (s *Service) GetLeaveType(ctx context.Context, id int64) (*LeaveType, error) {
	data, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load leave type", "leave_type_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load leave type", err)
	}
	if data == nil {
		return nil, internal.ErrLeaveTypeNotFound
	}
	return FromDataModel(data), nil
}

func (s *Service) ListLeaveTypes(ctx context.Context) ([]*LeaveType, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list leave types", "error", err)
		return nil, internal.NewInternalError("failed to list leave types", err)
	}
	types := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		types = append(types, FromDataModel(row))
	}
	return types, nil
}

func (s *Service) PoliciesForRole(ctx context.Context, role employee.Role) ([]Policy, error) {
	rows, err := s.repo.PoliciesForRole(ctx, role.String())
	if err != nil {
		s.logger.Error("failed to load leave policies", "role", role, "error", err)
		return nil, internal.NewInternalError("failed to load leave policies", err)
	}
	policies := make([]Policy, 0, len(rows))
	for _, row := range rows {
		policies = append(policies, PolicyFromDataModel(row))
	}
	return policies, nil
}
