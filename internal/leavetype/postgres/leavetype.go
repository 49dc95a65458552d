package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"gorm.io/gorm"
)

type LeaveTypeRepository struct {
	db *gorm.DB
}

func NewLeaveTypeRepository(db *gorm.DB) leavetype.RepositoryAPI {
	return &LeaveTypeRepository{db: db}
}

func (r *LeaveTypeRepository) FindByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var lt leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lt, nil
}

func (r *LeaveTypeRepository) List(ctx context.Context) ([]*leaveDatamodel.LeaveType, error) {
	var types []*leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

func (r *LeaveTypeRepository) PoliciesForRole(ctx context.Context, role string) ([]*leaveDatamodel.LeavePolicy, error) {
	var policies []*leaveDatamodel.LeavePolicy
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("leave_type_id ASC").Find(&policies).Error
	return policies, err
}
