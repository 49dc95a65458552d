package leave

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/balance"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

const MessageCancelled = "Leave cancelled successfully"

// Repository reads and writes leave requests. Bound to a transaction it is
// used by the state machine; bound to the pool it serves the read views.
type Repository interface {
	Create(ctx context.Context, r *leaveDatamodel.LeaveRequest) error
	FindByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error)
	FindForUpdate(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error)
	UpdateState(ctx context.Context, r *leaveDatamodel.LeaveRequest) error
	ActiveRangeExists(ctx context.Context, employeeID int64, from, to time.Time) (bool, error)
	History(ctx context.Context, employeeID int64) ([]RequestView, error)
	PendingFor(ctx context.Context, approverID int64) ([]RequestView, error)
}

// Tx is the set of stores one state transition works on, all bound to the
// same database transaction.
type Tx struct {
	Requests Repository
	Flow     *approval.Flow
	Ledger   *balance.Ledger
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// RequestView is a leave request joined with the names a listing shows.
type RequestView struct {
	LeaveRequestID  int64           `json:"leave_req_id" gorm:"column:leave_req_id"`
	EmployeeID      int64           `json:"emp_id" gorm:"column:emp_id"`
	EmployeeName    string          `json:"emp_name" gorm:"column:emp_name"`
	LeaveType       string          `json:"leave_type" gorm:"column:leave_type"`
	FromDate        time.Time       `json:"from_date" gorm:"column:from_date"`
	ToDate          time.Time       `json:"to_date" gorm:"column:to_date"`
	Reason          string          `json:"reason" gorm:"column:reason"`
	Status          approval.Status `json:"status" gorm:"column:status"`
	RejectionReason *string         `json:"rejection_reason" gorm:"column:rejection_reason"`
	NumOfDays       int             `json:"num_of_days" gorm:"column:num_of_days"`
	ApprovedBy      string          `json:"approved_by" gorm:"column:approved_by"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at"`
}

type SubmitResult struct {
	LeaveRequestID int64           `json:"leave_req_id"`
	Status         approval.Status `json:"status"`
	NumOfDays      int             `json:"num_of_days"`
	Message        string          `json:"message"`
}

type DecisionResult struct {
	LeaveRequestID int64           `json:"leave_req_id"`
	Status         approval.Status `json:"status"`
	Message        string          `json:"message"`
}

type CancelResult struct {
	LeaveRequestID int64           `json:"leave_req_id"`
	Status         approval.Status `json:"status"`
	Message        string          `json:"message"`
}
