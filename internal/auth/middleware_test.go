package auth_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockValidator struct {
	principals map[string]*auth.Principal
	err        error
}

func (m *mockValidator) Validate(token string) (*auth.Principal, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.principals[token]; ok {
		return p, nil
	}
	return nil, internal.ErrInvalidToken
}

var _ = Describe("Middleware", func() {
	var (
		validator *mockValidator
		router    *chi.Mux
		seen      *auth.Principal
	)

	ok := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	call := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		seen = nil
		validator = &mockValidator{principals: map[string]*auth.Principal{
			"staff":   {EmployeeID: 3, Role: employee.RoleEmployee},
			"manager": {EmployeeID: 2, Role: employee.RoleManager},
		}}
		mw := auth.NewMiddleware(validator)

		router = chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(mw.Authenticate)
			r.Get("/me", ok)
			r.With(mw.RequireSelf("emp_id")).Post("/cancel/{emp_id}", ok)
			r.With(mw.RequireSelfOrDecider("emp_id")).Get("/balance/{emp_id}", ok)
			r.With(
				mw.RequireRoles(employee.RoleManager, employee.RoleSeniorManager),
				mw.RequireSelf("emp_id"),
			).Patch("/status/{emp_id}", ok)
		})
	})

	Describe("Authenticate", func() {
		It("should put the principal on the context", func() {
			rec := call(http.MethodGet, "/me", "staff")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seen).To(Equal(&auth.Principal{EmployeeID: 3, Role: employee.RoleEmployee}))
		})

		It("should reject a missing token", func() {
			rec := call(http.MethodGet, "/me", "")

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("INVALID_TOKEN"))
		})

		It("should reject an expired token", func() {
			validator.err = internal.ErrTokenExpired

			rec := call(http.MethodGet, "/me", "staff")

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("TOKEN_EXPIRED"))
		})
	})

	Describe("RequireSelf", func() {
		It("should allow the employee named in the path", func() {
			Expect(call(http.MethodPost, "/cancel/3", "staff").Code).To(Equal(http.StatusOK))
		})

		It("should forbid acting for someone else", func() {
			rec := call(http.MethodPost, "/cancel/2", "staff")

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("UNAUTHORIZED_ACCESS"))
		})

		It("should reject a malformed id", func() {
			Expect(call(http.MethodPost, "/cancel/abc", "staff").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("RequireSelfOrDecider", func() {
		It("should let a manager read another employee", func() {
			Expect(call(http.MethodGet, "/balance/3", "manager").Code).To(Equal(http.StatusOK))
		})

		It("should not let an employee read a colleague", func() {
			Expect(call(http.MethodGet, "/balance/2", "staff").Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("RequireRoles", func() {
		It("should forbid employees from deciding", func() {
			rec := call(http.MethodPatch, "/status/3", "staff")

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("FORBIDDEN_ROLE"))
		})

		It("should let a manager decide as themselves", func() {
			Expect(call(http.MethodPatch, "/status/2", "manager").Code).To(Equal(http.StatusOK))
		})
	})

	Describe("PrincipalFromContext", func() {
		It("should report anonymous requests", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			_, found := auth.PrincipalFromContext(req.Context())
			Expect(found).To(BeFalse())
		})
	})
})
