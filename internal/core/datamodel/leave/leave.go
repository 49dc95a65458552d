package leave

import "time"

type LeaveType struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;uniqueIndex;not null"`
	IsCarryForward bool      `gorm:"column:is_carry_forward;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

type LeavePolicy struct {
	ID              int64  `gorm:"primaryKey"`
	Role            string `gorm:"column:role;not null;uniqueIndex:idx_leave_policies_role_type"`
	LeaveTypeID     int64  `gorm:"column:leave_type_id;not null;uniqueIndex:idx_leave_policies_role_type"`
	AccrualPerMonth int    `gorm:"column:accrual_per_month;not null"`
	MaxDaysPerYear  int    `gorm:"column:max_days_per_year;not null"`
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}

type LeaveBalance struct {
	ID          int64     `gorm:"primaryKey"`
	EmployeeID  int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_leave_balances_employee_type"`
	LeaveTypeID int64     `gorm:"column:leave_type_id;not null;uniqueIndex:idx_leave_balances_employee_type"`
	Balance     int       `gorm:"column:balance;not null;default:0;check:balance >= 0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type LeaveRequest struct {
	ID              int64     `gorm:"primaryKey"`
	EmployeeID      int64     `gorm:"column:employee_id;not null;index"`
	LeaveTypeID     int64     `gorm:"column:leave_type_id;not null"`
	FromDate        time.Time `gorm:"column:from_date;type:date;not null"`
	ToDate          time.Time `gorm:"column:to_date;type:date;not null"`
	Reason          string    `gorm:"column:reason;not null"`
	NumOfDays       int       `gorm:"column:num_of_days;not null"`
	Status          string    `gorm:"column:status;not null;default:PENDING"`
	RejectionReason *string   `gorm:"column:rejection_reason"`
	ApproverID      *int64    `gorm:"column:approver_id;index"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

type ApprovalFlow struct {
	ID             int64     `gorm:"primaryKey"`
	LeaveRequestID int64     `gorm:"column:leave_request_id;not null;index"`
	ApproverID     int64     `gorm:"column:approver_id;not null;index"`
	Status         string    `gorm:"column:status;not null"`
	Remarks        string    `gorm:"column:remarks"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApprovalFlow) TableName() string {
	return "approval_flows"
}

// BalanceJobRun marks one employee as processed by one batch job for one
// period. The unique index makes a second run for the same period a no-op.
type BalanceJobRun struct {
	ID         int64     `gorm:"primaryKey"`
	Job        string    `gorm:"column:job;not null;uniqueIndex:idx_balance_job_runs_job_period_employee"`
	Period     string    `gorm:"column:period;not null;uniqueIndex:idx_balance_job_runs_job_period_employee"`
	EmployeeID int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_balance_job_runs_job_period_employee"`
	RunID      string    `gorm:"column:run_id;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (BalanceJobRun) TableName() string {
	return "balance_job_runs"
}
