package employee

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	FindEmployee(ctx context.Context, id int64) (*Employee, error)
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

// GetMe handles GET /employees/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	employeeID := internal.EmployeeIDFromContext(r.Context())
	if employeeID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	emp, err := h.Service.FindEmployee(r.Context(), employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}
