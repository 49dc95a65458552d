package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveSubmitted      = "leave.submitted"
	EventTypeLeaveAutoApproved   = "leave.auto_approved"
	EventTypeLeaveApproved       = "leave.approved"
	EventTypeLeaveForwarded      = "leave.forwarded"
	EventTypeLeaveRejected       = "leave.rejected"
	EventTypeLeaveCancelled      = "leave.cancelled"
	EventTypeBalanceJobCompleted = "balance.job_completed"
)

// LeaveEventTypes lists every leave lifecycle event, for subscribers that
// forward all of them.
var LeaveEventTypes = []string{
	EventTypeLeaveSubmitted,
	EventTypeLeaveAutoApproved,
	EventTypeLeaveApproved,
	EventTypeLeaveForwarded,
	EventTypeLeaveRejected,
	EventTypeLeaveCancelled,
}

type TrailEntry struct {
	ApproverID int64     `json:"approver_id"`
	Status     string    `json:"status"`
	Remarks    string    `json:"remarks"`
	CreatedAt  time.Time `json:"created_at"`
}

type LeaveEvent struct {
	BaseEvent
	LeaveRequestID int64        `json:"leave_request_id"`
	EmployeeID     int64        `json:"employee_id"`
	ApproverID     *int64       `json:"approver_id,omitempty"`
	LeaveType      string       `json:"leave_type"`
	Status         string       `json:"status"`
	FromDate       string       `json:"from_date"`
	ToDate         string       `json:"to_date"`
	NumOfDays      int          `json:"num_of_days"`
	Message        string       `json:"message"`
	Trail          []TrailEntry `json:"trail,omitempty"`
}

type LeaveEventParams struct {
	LeaveRequestID int64
	EmployeeID     int64
	ApproverID     *int64
	LeaveType      string
	Status         string
	FromDate       string
	ToDate         string
	NumOfDays      int
	Message        string
	Trail          []TrailEntry
}

func NewLeaveEvent(eventType string, p LeaveEventParams) *LeaveEvent {
	data := map[string]interface{}{
		"leave_request_id": p.LeaveRequestID,
		"employee_id":      p.EmployeeID,
		"leave_type":       p.LeaveType,
		"status":           p.Status,
		"from_date":        p.FromDate,
		"to_date":          p.ToDate,
		"num_of_days":      p.NumOfDays,
		"message":          p.Message,
	}
	if p.ApproverID != nil {
		data["approver_id"] = *p.ApproverID
	}
	if len(p.Trail) > 0 {
		data["trail"] = p.Trail
	}

	return &LeaveEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		LeaveRequestID: p.LeaveRequestID,
		EmployeeID:     p.EmployeeID,
		ApproverID:     p.ApproverID,
		LeaveType:      p.LeaveType,
		Status:         p.Status,
		FromDate:       p.FromDate,
		ToDate:         p.ToDate,
		NumOfDays:      p.NumOfDays,
		Message:        p.Message,
		Trail:          p.Trail,
	}
}

type BalanceJobCompletedEvent struct {
	BaseEvent
	Job       string `json:"job"`
	RunID     string `json:"run_id"`
	Period    string `json:"period"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

func NewBalanceJobCompletedEvent(job, runID, period string, processed, skipped, failed int) *BalanceJobCompletedEvent {
	return &BalanceJobCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBalanceJobCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"job":       job,
				"run_id":    runID,
				"period":    period,
				"processed": processed,
				"skipped":   skipped,
				"failed":    failed,
			},
		},
		Job:       job,
		RunID:     runID,
		Period:    period,
		Processed: processed,
		Skipped:   skipped,
		Failed:    failed,
	}
}
