package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal/approval"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"gorm.io/gorm"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

var _ approval.Repository = (*ApprovalRepository)(nil)

func (r *ApprovalRepository) Append(ctx context.Context, entries []*leaveDatamodel.ApprovalFlow) error {
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *ApprovalRepository) Find(ctx context.Context, requestID, approverID int64, status string) (*leaveDatamodel.ApprovalFlow, error) {
	var f leaveDatamodel.ApprovalFlow
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ? AND approver_id = ? AND status = ?", requestID, approverID, status).
		Order("id ASC").
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *ApprovalRepository) UpdateDecision(ctx context.Context, id int64, status, remarks string) error {
	return r.db.WithContext(ctx).
		Model(&leaveDatamodel.ApprovalFlow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  status,
			"remarks": remarks,
		}).Error
}

func (r *ApprovalRepository) DeleteByRequest(ctx context.Context, requestID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("leave_request_id = ?", requestID).
		Delete(&leaveDatamodel.ApprovalFlow{})
	return res.RowsAffected, res.Error
}

func (r *ApprovalRepository) DeleteByRequestAndStatus(ctx context.Context, requestID int64, status string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("leave_request_id = ? AND status = ?", requestID, status).
		Delete(&leaveDatamodel.ApprovalFlow{})
	return res.RowsAffected, res.Error
}

func (r *ApprovalRepository) ListByRequest(ctx context.Context, requestID int64) ([]*leaveDatamodel.ApprovalFlow, error) {
	var rows []*leaveDatamodel.ApprovalFlow
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
