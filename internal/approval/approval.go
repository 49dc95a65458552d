package approval

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending               Status = "PENDING"
	StatusPendingSeniorManager  Status = "PENDING_SENIOR_MANAGER"
	StatusApproved              Status = "APPROVED"
	StatusApprovedSeniorManager Status = "APPROVED_SENIOR_MANAGER"
	StatusRejected              Status = "REJECTED"
	StatusRejectedSeniorManager Status = "REJECTED_SENIOR_MANAGER"
	StatusCancelled             Status = "CANCELLED"
)

// PendingStatuses are the states a request can still be decided or cancelled in.
var PendingStatuses = []Status{StatusPending, StatusPendingSeniorManager}

func (s Status) IsPending() bool {
	switch s {
	case StatusPending, StatusPendingSeniorManager:
		return true
	case StatusApproved, StatusApprovedSeniorManager, StatusRejected, StatusRejectedSeniorManager, StatusCancelled:
		return false
	}
	return false
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusApprovedSeniorManager, StatusRejected, StatusRejectedSeniorManager, StatusCancelled:
		return true
	case StatusPending, StatusPendingSeniorManager:
		return false
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

const (
	RemarkSickAutoApproved      = "auto approved your sick leave - your manager has been notified about your leave"
	RemarkPendingSufficient     = "Pending manager approval - sufficient balance"
	RemarkPendingInsufficient   = "Pending manager approval - insufficient balance"
	RemarkPendingSeniorManager  = "Pending senior manager approval - insufficient balance"
	RemarkApprovedByManager     = "Approved by manager"
	RemarkForwarded             = "Forwarded to senior manager"
	RemarkApprovedSeniorManager = "Approved by senior manager"
)

// Entry is one recorded decision or forward on a leave request.
type Entry struct {
	ID             int64     `json:"id"`
	LeaveRequestID int64     `json:"leave_req_id"`
	ApproverID     int64     `json:"approver_id"`
	Status         Status    `json:"status"`
	Remarks        string    `json:"remarks"`
	CreatedAt      time.Time `json:"created_at"`
}

func EntryFromDataModel(f *leaveDatamodel.ApprovalFlow) *Entry {
	return &Entry{
		ID:             f.ID,
		LeaveRequestID: f.LeaveRequestID,
		ApproverID:     f.ApproverID,
		Status:         Status(f.Status),
		Remarks:        f.Remarks,
		CreatedAt:      f.CreatedAt,
	}
}

// Decision is one row of an approver's decision history, joined with the
// request it was made on.
type Decision struct {
	LeaveRequestID int64     `json:"leave_req_id" db:"leave_req_id"`
	LeaveType      string    `json:"leave_type" db:"leave_type"`
	EmployeeID     int64     `json:"emp_id" db:"emp_id"`
	EmployeeName   string    `json:"emp_name" db:"emp_name"`
	FromDate       time.Time `json:"from_date" db:"from_date"`
	ToDate         time.Time `json:"to_date" db:"to_date"`
	Reason         string    `json:"reason" db:"reason"`
	RequestStatus  Status    `json:"status" db:"status"`
	ApprovalStatus Status    `json:"approval_status" db:"approval_status"`
	Remarks        string    `json:"remarks" db:"remarks"`
	DecidedAt      time.Time `json:"approved_at" db:"decided_at"`
}
