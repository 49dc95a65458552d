package datamodel

import (
	"github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"gorm.io/gorm"
)

// ActiveRangeIndex keeps at most one live request per employee and date range.
// Rejected and cancelled rows free the range again.
const ActiveRangeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_leave_requests_active_range
	ON leave_requests (employee_id, from_date, to_date)
	WHERE status NOT IN ('CANCELLED', 'REJECTED', 'REJECTED_SENIOR_MANAGER')`

// AutoMigrate builds the schema from the models. Production uses the goose
// migrations in db/migrations; this is for tests and local sqlite runs.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&leave.LeaveType{},
		&leave.LeavePolicy{},
		&leave.LeaveBalance{},
		&leave.LeaveRequest{},
		&leave.ApprovalFlow{},
		&leave.BalanceJobRun{},
	); err != nil {
		return err
	}
	return db.Exec(ActiveRangeIndex).Error
}
