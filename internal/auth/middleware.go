package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type TokenValidator interface {
	Validate(token string) (*Principal, error)
}

type Middleware struct {
	*transport.BaseHandler
	tokens TokenValidator
}

func NewMiddleware(tokens TokenValidator) *Middleware {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Middleware{
		BaseHandler: transport.NewBaseHandler(lg),
		tokens:      tokens,
	}
}

// Authenticate requires a valid bearer token and puts the principal on the
// request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("Missing bearer token"))
			return
		}

		principal, err := m.tokens.Validate(token)
		if err != nil {
			m.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "employee_id", principal.EmployeeID, "role", principal.Role.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles only lets the listed roles through.
func (m *Middleware) RequireRoles(roles ...employee.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.HandleServiceError(w, internal.ErrForbiddenRole)
		})
	}
}

// RequireSelf rejects requests whose route parameter names another employee.
func (m *Middleware) RequireSelf(param string) func(http.Handler) http.Handler {
	return m.guard(param, func(*Principal) bool { return false })
}

// RequireSelfOrDecider also lets managers and senior managers read other
// employees' data.
func (m *Middleware) RequireSelfOrDecider(param string) func(http.Handler) http.Handler {
	return m.guard(param, func(p *Principal) bool { return p.Role.CanDecide() })
}

func (m *Middleware) guard(param string, allowOthers func(*Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}

			target, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || target <= 0 {
				m.HandleServiceError(w, internal.NewValidationFieldError(param, param+" must be a positive integer", internal.ErrCodeValidationFailed))
				return
			}

			if target != principal.EmployeeID && !allowOthers(principal) {
				m.HandleServiceError(w, internal.ErrUnauthorizedAccess)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
