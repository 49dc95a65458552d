package leave

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	Submit(ctx context.Context, employeeID int64, dto SubmitLeaveDTO) (*SubmitResult, error)
	Decide(ctx context.Context, approverID int64, role employee.Role, dto ChangeStatusDTO) (*DecisionResult, error)
	Cancel(ctx context.Context, employeeID int64, dto CancelLeaveDTO) (*CancelResult, error)
	History(ctx context.Context, employeeID int64) ([]RequestView, error)
	PendingFor(ctx context.Context, approverID int64) ([]RequestView, error)
	Track(ctx context.Context, principalID, requestID int64) ([]*approval.Entry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// SubmitLeave handles POST /leaves/request
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	employeeID := internal.EmployeeIDFromContext(r.Context())
	if employeeID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SubmitLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Submit(r.Context(), employeeID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

// ChangeStatus handles PATCH /leaves/status/{emp_id}
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	approverID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	role, err := employee.ParseRole(internal.RoleFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, internal.ErrForbiddenRole)
		return
	}

	var dto ChangeStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Decide(r.Context(), approverID, role, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// CancelLeave handles POST /leaves/cancel/{emp_id}
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CancelLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Cancel(r.Context(), employeeID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// GetHistory handles GET /leaves/user/{emp_id}
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	history, err := h.Service.History(r.Context(), employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, history)
}

// GetPendingLeaves handles GET /leaves/manager/leaves/{emp_id}
func (h *Handler) GetPendingLeaves(w http.ResponseWriter, r *http.Request) {
	approverID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	pending, err := h.Service.PendingFor(r.Context(), approverID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, pending)
}

// TrackLeave handles GET /leaves/track/{leave_req_id}
func (h *Handler) TrackLeave(w http.ResponseWriter, r *http.Request) {
	principalID := internal.EmployeeIDFromContext(r.Context())
	if principalID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := h.ParseIDParam(r, "leave_req_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	trail, err := h.Service.Track(r.Context(), principalID, requestID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, trail)
}
