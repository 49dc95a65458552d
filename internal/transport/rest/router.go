package rest

import (
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/holiday"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth     *auth.Middleware
	Health   *HealthHandler
	Employee *employee.Handler
	Leave    *leave.Handler
	Balance  *balance.Handler
	Approval *approval.Handler
	Holiday  *holiday.Handler
	OpenAPI  *swagger.Document
}

func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, h Handlers, logger *slog.Logger) {
	deciders := h.Auth.RequireRoles(employee.RoleManager, employee.RoleSeniorManager)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.Server.Origins()))
	router.Use(middleware.Logging)
	router.Use(middleware.NewRateLimiter(cfg.RateLimit).Handler)

	if h.OpenAPI != nil {
		router.Get("/openapi.yml", h.OpenAPI.ServeYAML)
		router.Get("/openapi.json", h.OpenAPI.ServeJSON)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Authenticate)

			pr.Get("/employees/me", h.Employee.GetMe)

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/request", h.Leave.SubmitLeave)
				lr.With(h.Auth.RequireSelf("emp_id")).Post("/cancel/{emp_id}", h.Leave.CancelLeave)
				lr.With(h.Auth.RequireSelfOrDecider("emp_id")).Get("/balance/{emp_id}", h.Balance.GetBalances)
				lr.With(h.Auth.RequireSelfOrDecider("emp_id")).Get("/user/{emp_id}", h.Leave.GetHistory)
				lr.Get("/track/{leave_req_id}", h.Leave.TrackLeave)
				lr.Get("/public-holidays", h.Holiday.GetPublicHolidays)
				lr.Get("/floater-holidays", h.Holiday.GetFloaterHolidays)

				lr.Group(func(mr chi.Router) {
					mr.Use(deciders)
					mr.With(h.Auth.RequireSelf("emp_id")).Get("/manager/leaves/{emp_id}", h.Leave.GetPendingLeaves)
					mr.With(h.Auth.RequireSelf("emp_id")).Patch("/status/{emp_id}", h.Leave.ChangeStatus)
					mr.With(h.Auth.RequireSelf("emp_id")).Get("/manager/approved-rejected-leaves/{emp_id}", h.Approval.GetDecisions)
				})
			})
		})
	})
}
