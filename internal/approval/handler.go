package approval

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	DecisionsBy(ctx context.Context, approverID int64) ([]Decision, error)
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

// GetDecisions handles GET /leaves/manager/approved-rejected-leaves/{emp_id}
func (h *Handler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	approverID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	decisions, err := h.Service.DecisionsBy(r.Context(), approverID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, decisions)
}
