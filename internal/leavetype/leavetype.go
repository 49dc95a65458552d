package leavetype

import (
	"strings"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/employee"
)

const (
	SickLeave    = "sick_leave"
	EarnedLeave  = "earned_leave"
	FloaterLeave = "floater_leave"
	LossOfPay    = "loss_of_pay"
)

type LeaveType struct {
	ID             int64  `json:"leave_type_id"`
	Name           string `json:"name"`
	IsCarryForward bool   `json:"is_carry_forward"`
}

func (t *LeaveType) IsSick() bool {
	return t.Name == SickLeave
}

func (t *LeaveType) IsFloater() bool {
	return t.Name == FloaterLeave
}

// DisplayName turns "earned_leave" into "earned" and "loss_of_pay" into
// "loss of pay" for user-facing messages.
func (t *LeaveType) DisplayName() string {
	return strings.ReplaceAll(strings.TrimSuffix(t.Name, "_leave"), "_", " ")
}

// Policy is the accrual rule for one role and one leave type.
type Policy struct {
	ID              int64         `json:"id"`
	Role            employee.Role `json:"role"`
	LeaveTypeID     int64         `json:"leave_type_id"`
	AccrualPerMonth int           `json:"accrual_per_month"`
	MaxDaysPerYear  int           `json:"max_days_per_year"`
}

func FromDataModel(t *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:             t.ID,
		Name:           t.Name,
		IsCarryForward: t.IsCarryForward,
	}
}

func PolicyFromDataModel(p *leaveDatamodel.LeavePolicy) Policy {
	return Policy{
		ID:              p.ID,
		Role:            employee.Role(p.Role),
		LeaveTypeID:     p.LeaveTypeID,
		AccrualPerMonth: p.AccrualPerMonth,
		MaxDaysPerYear:  p.MaxDaysPerYear,
	}
}
