package balance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	Balances(ctx context.Context, employeeID int64) (map[string]int, error)
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

// GetBalances handles GET /leaves/balance/{emp_id}
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.ParseIDParam(r, "emp_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	balances, err := h.Service.Balances(r.Context(), employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, balances)
}
