package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/holiday"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubHolidays struct{}

func (stubHolidays) PublicHolidays(context.Context, int) ([]holiday.Holiday, error) {
	return []holiday.Holiday{{Name: "Republic Day", Date: "2026-01-26"}}, nil
}

func (stubHolidays) FloaterHolidays() []holiday.FloaterHoliday {
	return []holiday.FloaterHoliday{{Date: "2026-03-04", Day: "Wednesday"}}
}

type stubBalances struct{}

func (stubBalances) Balances(context.Context, int64) (map[string]int, error) {
	return map[string]int{"earned": 6, "sick": 2}, nil
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		mock   sqlmock.Sqlmock
		tokens *auth.TokenService
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		mock = m
		DeferCleanup(func() {
			mock.ExpectClose()
			Expect(db.Close()).To(Succeed())
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})

		cfg := &internal.Config{
			Server: internal.ServerConfig{AllowedOrigins: "*"},
			Security: internal.SecurityConfig{
				JWTSecret:           "router-test-secret-0123456789abcdef",
				Issuer:              "leave-management",
				AccessTokenDuration: time.Minute,
			},
		}
		tokens = auth.NewTokenService(cfg.Security)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, cfg, rest.Handlers{
			Auth:     auth.NewMiddleware(tokens),
			Health:   rest.NewHealthHandler(db),
			Employee: employee.NewHandler(nil),
			Leave:    leave.NewHandler(nil),
			Balance:  balance.NewHandler(stubBalances{}),
			Approval: approval.NewHandler(nil),
			Holiday:  holiday.NewHandler(stubHolidays{}),
		}, slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
	})

	call := func(method, path string, employeeID int64, role employee.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if employeeID > 0 {
			token, _, err := tokens.Issue(employeeID, role)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("answers ping without a token", func() {
		rec := call(http.MethodGet, "/api/v1/ping", 0, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})

	Context("health", func() {
		It("reports healthy when postgres answers", func() {
			mock.ExpectPing()

			rec := call(http.MethodGet, "/api/v1/health", 0, "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Components).To(HaveKey("postgres"))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})

		It("reports unhealthy when postgres does not answer", func() {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))

			rec := call(http.MethodGet, "/api/v1/health", 0, "")

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	It("rejects leave routes without a bearer token", func() {
		rec := call(http.MethodGet, "/api/v1/leaves/floater-holidays", 0, "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("serves the floater list to any authenticated employee", func() {
		rec := call(http.MethodGet, "/api/v1/leaves/floater-holidays", 4, employee.RoleIntern)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("2026-03-04"))
	})

	Context("balance guard", func() {
		It("lets employees read their own balance", func() {
			rec := call(http.MethodGet, "/api/v1/leaves/balance/3", 3, employee.RoleEmployee)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("stops employees reading someone else's balance", func() {
			rec := call(http.MethodGet, "/api/v1/leaves/balance/2", 3, employee.RoleEmployee)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("lets a manager read a report's balance", func() {
			rec := call(http.MethodGet, "/api/v1/leaves/balance/3", 2, employee.RoleManager)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	It("keeps the approver queue away from non deciders", func() {
		// Given an employee token
		// When they ask for a pending queue under their own id
		rec := call(http.MethodGet, "/api/v1/leaves/manager/leaves/3", 3, employee.RoleEmployee)

		// Then the role guard refuses before the handler runs
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("does not mount the openapi routes without a document", func() {
		rec := call(http.MethodGet, "/openapi.json", 0, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
