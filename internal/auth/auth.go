package auth

import (
	"context"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller the leave engine authorizes against.
type Principal struct {
	EmployeeID int64         `json:"emp_id"`
	Role       employee.Role `json:"role"`
}

// Claims carries the employee id in the standard subject claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() (*Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, internal.ErrInvalidToken
	}
	role, err := employee.ParseRole(c.Role)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	return &Principal{EmployeeID: id, Role: role}, nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = internal.ContextWithEmployeeID(ctx, p.EmployeeID)
	return internal.ContextWithRole(ctx, p.Role.String())
}

// PrincipalFromContext reports false when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	id := internal.EmployeeIDFromContext(ctx)
	if id == 0 {
		return nil, false
	}
	role, err := employee.ParseRole(internal.RoleFromContext(ctx))
	if err != nil {
		return nil, false
	}
	return &Principal{EmployeeID: id, Role: role}, true
}
