package leave

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type SubmitLeaveDTO struct {
	LeaveTypeID int64  `json:"leave_type_id"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	Reason      string `json:"reason"`
}

func (dto *SubmitLeaveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leave_type_id", dto.LeaveTypeID).MinInt(1, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateLeaveDates(dto.FromDate, dto.ToDate); err != nil {
		return err
	}
	if err := validation.ValidateLeaveReason(dto.Reason); err != nil {
		return err
	}
	return nil
}

// Dates returns the parsed range. Call it after Validate.
func (dto *SubmitLeaveDTO) Dates() (time.Time, time.Time) {
	from, _ := time.Parse(internal.DateLayout, dto.FromDate)
	to, _ := time.Parse(internal.DateLayout, dto.ToDate)
	return from, to
}

type ChangeStatusDTO struct {
	NewStatus       string  `json:"newStatus"`
	LeaveReqID      int64   `json:"leave_req_id"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func (dto *ChangeStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("newStatus", dto.NewStatus).
		Required().
		OneOf(approval.StatusApproved.String(), approval.StatusRejected.String())
	v.Field("leave_req_id", dto.LeaveReqID).MinInt(1, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateRejectionReason(dto.RejectionReason, dto.Rejecting()); err != nil {
		return err
	}
	return nil
}

func (dto *ChangeStatusDTO) Rejecting() bool {
	return dto.NewStatus == approval.StatusRejected.String()
}

type CancelLeaveDTO struct {
	LeaveReqID int64 `json:"leave_req_id"`
}

func (dto *CancelLeaveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leave_req_id", dto.LeaveReqID).MinInt(1, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
