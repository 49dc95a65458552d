package employee

import (
	"fmt"
	"time"

	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
)

type Role string

const (
	RoleIntern        Role = "INTERN"
	RoleEmployee      Role = "EMPLOYEE"
	RoleManager       Role = "MANAGER"
	RoleSeniorManager Role = "SENIOR_MANAGER"
)

var Roles = []Role{RoleIntern, RoleEmployee, RoleManager, RoleSeniorManager}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleIntern, RoleEmployee, RoleManager, RoleSeniorManager:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanDecide reports whether the role may approve or reject leave.
func (r Role) CanDecide() bool {
	switch r {
	case RoleManager, RoleSeniorManager:
		return true
	case RoleIntern, RoleEmployee:
		return false
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type Employee struct {
	ID                int64     `json:"emp_id"`
	Name              string    `json:"emp_name"`
	Email             string    `json:"email"`
	Department        string    `json:"department"`
	Role              Role      `json:"role"`
	ManagerID         *int64    `json:"manager_id,omitempty"`
	TotalLeaveBalance int       `json:"total_leave_balance"`
	CreatedAt         time.Time `json:"created_at"`
}

// Hierarchy is the two-hop chain used for approval routing. Manager and
// ManagerOfManager are nil when the chain stops early.
type Hierarchy struct {
	Employee         Employee
	Manager          *Employee
	ManagerOfManager *Employee
}

func (h *Hierarchy) ManagerID() (int64, bool) {
	if h.Manager == nil {
		return 0, false
	}
	return h.Manager.ID, true
}

func (h *Hierarchy) ManagerOfManagerID() (int64, bool) {
	if h.ManagerOfManager == nil {
		return 0, false
	}
	return h.ManagerOfManager.ID, true
}

func FromDataModel(e *employeeDatamodel.Employee) (*Employee, error) {
	role, err := ParseRole(e.Role)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", e.ID, err)
	}
	return &Employee{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Department:        e.Department,
		Role:              role,
		ManagerID:         e.ManagerID,
		TotalLeaveBalance: e.TotalLeaveBalance,
		CreatedAt:         e.CreatedAt,
	}, nil
}
