package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal/approval"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inactiveStatuses free a date range for a new request.
var inactiveStatuses = []string{
	approval.StatusCancelled.String(),
	approval.StatusRejected.String(),
	approval.StatusRejectedSeniorManager.String(),
}

const requestViewColumns = `lr.id AS leave_req_id,
	lr.employee_id AS emp_id,
	e.name AS emp_name,
	lt.name AS leave_type,
	lr.from_date AS from_date,
	lr.to_date AS to_date,
	lr.reason AS reason,
	lr.status AS status,
	lr.rejection_reason AS rejection_reason,
	lr.num_of_days AS num_of_days,
	COALESCE(a.name, '') AS approved_by,
	lr.created_at AS created_at`

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

var _ leave.Repository = (*LeaveRepository)(nil)

func (r *LeaveRepository) Create(ctx context.Context, req *leaveDatamodel.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRepository) FindByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *LeaveRepository) FindForUpdate(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *LeaveRepository) find(q *gorm.DB, id int64) (*leaveDatamodel.LeaveRequest, error) {
	var req leaveDatamodel.LeaveRequest
	if err := q.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// UpdateState writes the columns a transition may change.
func (r *LeaveRepository) UpdateState(ctx context.Context, req *leaveDatamodel.LeaveRequest) error {
	return r.db.WithContext(ctx).
		Model(req).
		Select("status", "approver_id", "rejection_reason", "updated_at").
		Updates(req).Error
}

func (r *LeaveRepository) ActiveRangeExists(ctx context.Context, employeeID int64, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveRequest{}).
		Where("employee_id = ? AND from_date = ? AND to_date = ?", employeeID, from, to).
		Where("status NOT IN ?", inactiveStatuses).
		Count(&count).Error
	return count > 0, err
}

func (r *LeaveRepository) History(ctx context.Context, employeeID int64) ([]leave.RequestView, error) {
	views := []leave.RequestView{}
	err := r.views(ctx).
		Where("lr.employee_id = ?", employeeID).
		Order("lr.created_at DESC, lr.id DESC").
		Scan(&views).Error
	return views, err
}

func (r *LeaveRepository) PendingFor(ctx context.Context, approverID int64) ([]leave.RequestView, error) {
	pending := make([]string, 0, len(approval.PendingStatuses))
	for _, s := range approval.PendingStatuses {
		pending = append(pending, s.String())
	}

	views := []leave.RequestView{}
	err := r.views(ctx).
		Where("lr.approver_id = ? AND lr.status IN ?", approverID, pending).
		Order("lr.created_at DESC, lr.id DESC").
		Scan(&views).Error
	return views, err
}

func (r *LeaveRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("leave_requests AS lr").
		Select(requestViewColumns).
		Joins("JOIN employees e ON e.id = lr.employee_id").
		Joins("JOIN leave_types lt ON lt.id = lr.leave_type_id").
		Joins("LEFT JOIN employees a ON a.id = lr.approver_id")
}
