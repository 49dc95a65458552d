package holiday

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	PublicHolidays(ctx context.Context, year int) ([]Holiday, error)
	FloaterHolidays() []FloaterHoliday
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

// GetPublicHolidays handles GET /leaves/public-holidays?year=
func (h *Handler) GetPublicHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 9999 {
			h.HandleServiceError(w, internal.NewValidationFieldError("year", "year must be a four digit year", internal.ErrCodeValidationFailed))
			return
		}
		year = parsed
	}

	holidays, err := h.Service.PublicHolidays(r.Context(), year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if len(holidays) == 0 {
		h.WriteError(w, http.StatusNotFound, "No holidays found for this year")
		return
	}

	h.WriteJSON(w, http.StatusOK, holidays)
}

// GetFloaterHolidays handles GET /leaves/floater-holidays
func (h *Handler) GetFloaterHolidays(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.FloaterHolidays())
}
