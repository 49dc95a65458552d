package approval

import (
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
)

// Step is one approval-flow entry created when a request is submitted.
type Step struct {
	ApproverID int64
	Status     Status
	Remarks    string
}

type Route struct {
	ApproverChain     []int64
	InitialStatus     Status
	SkipsApproval     bool
	SufficientBalance bool
	// DeductOnSubmit is set for auto-approved requests with enough balance.
	DeductOnSubmit bool
	Steps          []Step
}

// AssignedApprover is the approver the request is bound to on creation.
func (r *Route) AssignedApprover() int64 {
	return r.ApproverChain[0]
}

// Router decides who approves a request. It holds no state, so the same
// inputs always produce the same route.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Route(h *employee.Hierarchy, lt *leavetype.LeaveType, days, balance int) (*Route, error) {
	managerID, ok := h.ManagerID()
	if !ok {
		return nil, internal.ErrNoApproverFound
	}
	sufficient := balance >= days

	if lt.IsSick() {
		return &Route{
			ApproverChain:     []int64{managerID},
			InitialStatus:     StatusApproved,
			SkipsApproval:     true,
			SufficientBalance: sufficient,
			DeductOnSubmit:    sufficient,
			Steps: []Step{
				{ApproverID: managerID, Status: StatusApproved, Remarks: RemarkSickAutoApproved},
			},
		}, nil
	}

	if sufficient {
		return &Route{
			ApproverChain:     []int64{managerID},
			InitialStatus:     StatusPending,
			SufficientBalance: true,
			Steps: []Step{
				{ApproverID: managerID, Status: StatusPending, Remarks: RemarkPendingSufficient},
			},
		}, nil
	}

	route := &Route{
		ApproverChain: []int64{managerID},
		InitialStatus: StatusPending,
		Steps: []Step{
			{ApproverID: managerID, Status: StatusPending, Remarks: RemarkPendingInsufficient},
		},
	}
	// Without a second level the request still goes to the manager; the
	// forward fails later with ErrNoSeniorManager.
	if seniorID, ok := h.ManagerOfManagerID(); ok {
		route.ApproverChain = append(route.ApproverChain, seniorID)
		route.Steps = append(route.Steps, Step{
			ApproverID: seniorID,
			Status:     StatusPendingSeniorManager,
			Remarks:    RemarkPendingSeniorManager,
		})
	}
	return route, nil
}
