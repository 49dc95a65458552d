package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/workday"
)

type Directory interface {
	FindEmployee(ctx context.Context, id int64) (*employee.Employee, error)
	Hierarchy(ctx context.Context, id int64) (*employee.Hierarchy, error)
}

type LeaveTypes interface {
	GetLeaveType(ctx context.Context, id int64) (*leavetype.LeaveType, error)
}

type Calendar interface {
	HolidaysBetween(ctx context.Context, from, to time.Time) (workday.Set, error)
}

type Dependencies struct {
	Requests   Repository
	Flow       *approval.Flow
	Transactor Transactor
	Directory  Directory
	LeaveTypes LeaveTypes
	Calendar   Calendar
	Calculator *workday.Calculator
	Router     *approval.Router
	Publisher  events.Publisher
	Logger     *slog.Logger
}

// Service is the leave request state machine. Every transition runs in one
// transaction; events are published after it commits.
type Service struct {
	requests   Repository
	flow       *approval.Flow
	tx         Transactor
	directory  Directory
	leaveTypes LeaveTypes
	calendar   Calendar
	calc       *workday.Calculator
	router     *approval.Router
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(deps Dependencies) *Service {
	return &Service{
		requests:   deps.Requests,
		flow:       deps.Flow,
		tx:         deps.Transactor,
		directory:  deps.Directory,
		leaveTypes: deps.LeaveTypes,
		calendar:   deps.Calendar,
		calc:       deps.Calculator,
		router:     deps.Router,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
	}
}

func (s *Service) Submit(ctx context.Context, employeeID int64, dto SubmitLeaveDTO) (*SubmitResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("leave request validation failed", "employee_id", employeeID, "error", err)
		return nil, err
	}
	from, to := dto.Dates()

	chain, err := s.directory.Hierarchy(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	lt, err := s.leaveTypes.GetLeaveType(ctx, dto.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	if lt.IsFloater() && (!from.Equal(to) || !s.calc.IsFloaterDate(from)) {
		s.logger.Warn("floater leave outside the floater list", "employee_id", employeeID, "from_date", dto.FromDate, "to_date", dto.ToDate)
		return nil, internal.ErrInvalidFloaterDate
	}

	holidays, err := s.calendar.HolidaysBetween(ctx, from, to)
	if err != nil {
		s.logger.Warn("holiday lookup failed, counting weekends only", "error", err)
		holidays = workday.Set{}
	}
	days := s.calc.Compute(from, to, holidays, lt.Name)
	if days.AllInvalid && !lt.IsFloater() {
		return nil, internal.ErrNonWorkingDaysOnly
	}

	duplicate := internal.ErrDuplicateRequest.WithMessage(
		fmt.Sprintf("Leave already exists for the selected date range (%s to %s).", dto.FromDate, dto.ToDate))

	var (
		req      *leaveDatamodel.LeaveRequest
		route    *approval.Route
		deducted bool
	)
	err = s.tx.WithinTx(ctx, func(tx Tx) error {
		exists, err := tx.Requests.ActiveRangeExists(ctx, employeeID, from, to)
		if err != nil {
			return fmt.Errorf("check duplicate range: %w", err)
		}
		if exists {
			return duplicate
		}

		current, err := tx.Ledger.Current(ctx, employeeID, lt.ID)
		if err != nil {
			return err
		}
		route, err = s.router.Route(chain, lt, days.TotalDays, current)
		if err != nil {
			return err
		}

		approverID := route.AssignedApprover()
		req = &leaveDatamodel.LeaveRequest{
			EmployeeID:  employeeID,
			LeaveTypeID: lt.ID,
			FromDate:    from,
			ToDate:      to,
			Reason:      dto.Reason,
			NumOfDays:   days.TotalDays,
			Status:      route.InitialStatus.String(),
			ApproverID:  &approverID,
		}
		if err := tx.Requests.Create(ctx, req); err != nil {
			if database.IsDuplicateKey(err) {
				return duplicate
			}
			return fmt.Errorf("create leave request: %w", err)
		}

		if _, err := tx.Flow.Open(ctx, req.ID, route.Steps); err != nil {
			return err
		}

		if route.DeductOnSubmit {
			_, err := tx.Ledger.Deduct(ctx, employeeID, lt.ID, days.TotalDays)
			switch {
			case err == nil:
				deducted = true
			case errors.Is(err, internal.ErrInsufficientBalance):
				// Spent by a concurrent approval since the read above.
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.transitionError("submit leave request", employeeID, err)
	}

	message := submitMessage(lt, route, days.TotalDays, deducted)
	eventType := events.EventTypeLeaveSubmitted
	if route.SkipsApproval {
		eventType = events.EventTypeLeaveAutoApproved
	}
	s.publish(ctx, eventType, req, lt.Name, message, nil)

	s.logger.Info("leave request submitted",
		"leave_request_id", req.ID,
		"employee_id", employeeID,
		"leave_type", lt.Name,
		"num_of_days", days.TotalDays,
		"status", req.Status)

	return &SubmitResult{
		LeaveRequestID: req.ID,
		Status:         approval.Status(req.Status),
		NumOfDays:      days.TotalDays,
		Message:        message,
	}, nil
}

func submitMessage(lt *leavetype.LeaveType, route *approval.Route, days int, deducted bool) string {
	name := lt.DisplayName()
	if route.SkipsApproval {
		if deducted {
			return fmt.Sprintf("%s leave approved and %d days deducted from balance.", name, days)
		}
		return fmt.Sprintf("%s leave approved without deduction: balance insufficient for %d days.", name, days)
	}
	if route.SufficientBalance {
		return fmt.Sprintf("%s leave request sent to manager for %d days.", name, days)
	}
	return fmt.Sprintf("%s leave balance insufficient. Leave request forwarded to Manager Approval -> Senior Manager.", name)
}

type outcome int

const (
	outcomeApproved outcome = iota
	outcomeForwarded
	outcomeRejected
)

// Decide applies an approver's decision. The stage is taken from the
// request status, so a senior manager who is the direct manager decides the
// first stage like any manager.
func (s *Service) Decide(ctx context.Context, approverID int64, role employee.Role, dto ChangeStatusDTO) (*DecisionResult, error) {
	if !role.CanDecide() {
		s.logger.Warn("decision attempted by non-approver role", "employee_id", approverID, "role", role)
		return nil, internal.ErrForbiddenRole
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	approver, err := s.directory.FindEmployee(ctx, approverID)
	if err != nil {
		return nil, err
	}

	req, err := s.findRequest(ctx, dto.LeaveReqID)
	if err != nil {
		return nil, err
	}
	stage := approval.Status(req.Status)
	if !stage.IsPending() {
		s.logger.Warn("decision on a closed leave request", "leave_request_id", req.ID, "status", req.Status)
		return nil, internal.ErrInvalidTransition
	}
	if req.ApproverID == nil || *req.ApproverID != approverID {
		return nil, internal.ErrNotAssignedApprover
	}

	lt, err := s.leaveTypes.GetLeaveType(ctx, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	var seniorID *int64
	if stage == approval.StatusPending && !dto.Rejecting() {
		chain, err := s.directory.Hierarchy(ctx, approverID)
		if err != nil {
			return nil, err
		}
		if id, ok := chain.ManagerID(); ok {
			seniorID = &id
		}
	}

	var (
		result  outcome
		updated *leaveDatamodel.LeaveRequest
	)
	err = s.tx.WithinTx(ctx, func(tx Tx) error {
		locked, err := tx.Requests.FindForUpdate(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("lock leave request: %w", err)
		}
		if locked == nil {
			return internal.ErrLeaveRequestNotFound
		}
		if locked.Status != req.Status || locked.ApproverID == nil || *locked.ApproverID != approverID {
			return internal.ErrInvalidTransition
		}

		switch stage {
		case approval.StatusPending:
			result, err = s.decideManagerStage(ctx, tx, locked, approverID, seniorID, dto)
		case approval.StatusPendingSeniorManager:
			result, err = s.decideSeniorStage(ctx, tx, locked, approverID, dto)
		default:
			err = internal.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := tx.Requests.UpdateState(ctx, locked); err != nil {
			return fmt.Errorf("update leave request: %w", err)
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, s.transitionError("decide leave request", approverID, err)
	}

	var (
		message   string
		eventType string
	)
	switch result {
	case outcomeApproved:
		message = fmt.Sprintf("Leave approved by %s", approver.Name)
		eventType = events.EventTypeLeaveApproved
	case outcomeForwarded:
		message = fmt.Sprintf("Leave request forwarded to Senior Manager by %s", approver.Name)
		eventType = events.EventTypeLeaveForwarded
	case outcomeRejected:
		message = fmt.Sprintf("Leave request rejected by %s", approver.Name)
		eventType = events.EventTypeLeaveRejected
	}
	s.publish(ctx, eventType, updated, lt.Name, message, nil)

	s.logger.Info("leave request decided",
		"leave_request_id", updated.ID,
		"approver_id", approverID,
		"status", updated.Status)

	return &DecisionResult{
		LeaveRequestID: updated.ID,
		Status:         approval.Status(updated.Status),
		Message:        message,
	}, nil
}

func (s *Service) decideManagerStage(ctx context.Context, tx Tx, req *leaveDatamodel.LeaveRequest, approverID int64, seniorID *int64, dto ChangeStatusDTO) (outcome, error) {
	if dto.Rejecting() {
		if _, err := tx.Flow.Decide(ctx, req.ID, approverID, approval.StatusPending, approval.StatusRejected, *dto.RejectionReason); err != nil {
			return 0, err
		}
		if _, err := tx.Flow.DropEscalation(ctx, req.ID); err != nil {
			return 0, err
		}
		req.Status = approval.StatusRejected.String()
		req.RejectionReason = dto.RejectionReason
		return outcomeRejected, nil
	}

	_, err := tx.Ledger.Deduct(ctx, req.EmployeeID, req.LeaveTypeID, req.NumOfDays)
	if err == nil {
		if _, err := tx.Flow.Decide(ctx, req.ID, approverID, approval.StatusPending, approval.StatusApproved, approval.RemarkApprovedByManager); err != nil {
			return 0, err
		}
		req.Status = approval.StatusApproved.String()
		req.RejectionReason = nil
		return outcomeApproved, nil
	}
	if !errors.Is(err, internal.ErrInsufficientBalance) {
		return 0, err
	}

	if seniorID == nil {
		return 0, internal.ErrNoSeniorManager
	}
	if _, err := tx.Flow.Decide(ctx, req.ID, approverID, approval.StatusPending, approval.StatusApproved, approval.RemarkForwarded); err != nil {
		return 0, err
	}
	if err := tx.Flow.EnsureSeniorStep(ctx, req.ID, *seniorID); err != nil {
		return 0, err
	}
	req.Status = approval.StatusPendingSeniorManager.String()
	req.ApproverID = seniorID
	req.RejectionReason = nil
	return outcomeForwarded, nil
}

func (s *Service) decideSeniorStage(ctx context.Context, tx Tx, req *leaveDatamodel.LeaveRequest, approverID int64, dto ChangeStatusDTO) (outcome, error) {
	if dto.Rejecting() {
		if _, err := tx.Flow.Decide(ctx, req.ID, approverID, approval.StatusPendingSeniorManager, approval.StatusRejectedSeniorManager, *dto.RejectionReason); err != nil {
			return 0, err
		}
		req.Status = approval.StatusRejectedSeniorManager.String()
		req.RejectionReason = dto.RejectionReason
		return outcomeRejected, nil
	}

	if _, err := tx.Flow.Decide(ctx, req.ID, approverID, approval.StatusPendingSeniorManager, approval.StatusApprovedSeniorManager, approval.RemarkApprovedSeniorManager); err != nil {
		return 0, err
	}
	if _, err := tx.Ledger.DeductClamped(ctx, req.EmployeeID, req.LeaveTypeID, req.NumOfDays); err != nil {
		return 0, err
	}
	req.Status = approval.StatusApprovedSeniorManager.String()
	req.RejectionReason = nil
	return outcomeApproved, nil
}

// Cancel withdraws a pending request. Its approval entries are deleted and
// carried in the cancellation event instead.
func (s *Service) Cancel(ctx context.Context, employeeID int64, dto CancelLeaveDTO) (*CancelResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.findRequest(ctx, dto.LeaveReqID)
	if err != nil {
		return nil, err
	}
	if req.EmployeeID != employeeID {
		s.logger.Warn("cancel attempted by non-owner", "leave_request_id", req.ID, "employee_id", employeeID)
		return nil, internal.ErrNotRequestOwner
	}
	if !approval.Status(req.Status).IsPending() {
		return nil, internal.ErrInvalidTransition
	}

	lt, err := s.leaveTypes.GetLeaveType(ctx, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	var (
		purged    []*approval.Entry
		cancelled *leaveDatamodel.LeaveRequest
	)
	err = s.tx.WithinTx(ctx, func(tx Tx) error {
		locked, err := tx.Requests.FindForUpdate(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("lock leave request: %w", err)
		}
		if locked == nil {
			return internal.ErrLeaveRequestNotFound
		}
		if !approval.Status(locked.Status).IsPending() {
			return internal.ErrInvalidTransition
		}

		purged, err = tx.Flow.Purge(ctx, locked.ID)
		if err != nil {
			return err
		}
		locked.Status = approval.StatusCancelled.String()
		if err := tx.Requests.UpdateState(ctx, locked); err != nil {
			return fmt.Errorf("update leave request: %w", err)
		}
		cancelled = locked
		return nil
	})
	if err != nil {
		return nil, s.transitionError("cancel leave request", employeeID, err)
	}

	trail := make([]events.TrailEntry, 0, len(purged))
	for _, e := range purged {
		trail = append(trail, events.TrailEntry{
			ApproverID: e.ApproverID,
			Status:     e.Status.String(),
			Remarks:    e.Remarks,
			CreatedAt:  e.CreatedAt,
		})
	}
	s.publish(ctx, events.EventTypeLeaveCancelled, cancelled, lt.Name, MessageCancelled, trail)

	s.logger.Info("leave request cancelled", "leave_request_id", cancelled.ID, "employee_id", employeeID, "purged_entries", len(purged))

	return &CancelResult{
		LeaveRequestID: cancelled.ID,
		Status:         approval.StatusCancelled,
		Message:        MessageCancelled,
	}, nil
}

// History lists the employee's requests, newest first.
func (s *Service) History(ctx context.Context, employeeID int64) ([]RequestView, error) {
	if _, err := s.directory.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	views, err := s.requests.History(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to load leave history", "employee_id", employeeID, "error", err)
		return nil, internal.NewInternalError("failed to fetch leave history", err)
	}
	return views, nil
}

// PendingFor lists the requests waiting on the approver, newest first.
func (s *Service) PendingFor(ctx context.Context, approverID int64) ([]RequestView, error) {
	views, err := s.requests.PendingFor(ctx, approverID)
	if err != nil {
		s.logger.Error("failed to load pending leaves", "approver_id", approverID, "error", err)
		return nil, internal.NewInternalError("failed to fetch leave requests", err)
	}
	return views, nil
}

// Track returns the approval trail of a request to its owner or to anyone
// who approves it.
func (s *Service) Track(ctx context.Context, principalID, requestID int64) ([]*approval.Entry, error) {
	req, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	trail, err := s.flow.Trail(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to load approval trail", "leave_request_id", requestID, "error", err)
		return nil, internal.NewInternalError("failed to fetch approval trail", err)
	}

	if req.EmployeeID == principalID || (req.ApproverID != nil && *req.ApproverID == principalID) {
		return trail, nil
	}
	for _, e := range trail {
		if e.ApproverID == principalID {
			return trail, nil
		}
	}
	return nil, internal.ErrUnauthorizedAccess
}

func (s *Service) findRequest(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load leave request", "leave_request_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load leave request", err)
	}
	if req == nil {
		return nil, internal.ErrLeaveRequestNotFound
	}
	return req, nil
}

// transitionError passes domain errors through and hides persistence
// failures behind an internal error. The transaction is already rolled back.
func (s *Service) transitionError(op string, employeeID int64, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		s.logger.Warn(op+" rejected", "employee_id", employeeID, "code", appErr.Code)
		return err
	}
	s.logger.Error(op+" failed", "employee_id", employeeID, "error", err)
	return internal.NewInternalError("failed to "+op, err)
}

func (s *Service) publish(ctx context.Context, eventType string, req *leaveDatamodel.LeaveRequest, leaveType, message string, trail []events.TrailEntry) {
	if s.publisher == nil {
		return
	}
	event := events.NewLeaveEvent(eventType, events.LeaveEventParams{
		LeaveRequestID: req.ID,
		EmployeeID:     req.EmployeeID,
		ApproverID:     req.ApproverID,
		LeaveType:      leaveType,
		Status:         req.Status,
		FromDate:       req.FromDate.Format(internal.DateLayout),
		ToDate:         req.ToDate.Format(internal.DateLayout),
		NumOfDays:      req.NumOfDays,
		Message:        message,
		Trail:          trail,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish leave event", "event_type", eventType, "leave_request_id", req.ID, "error", err)
	}
}
