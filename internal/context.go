package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextEmployeeKey ctxKey = "employeeID"
	ContextRoleKey     ctxKey = "role"
)

func EmployeeIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(ContextEmployeeKey).(int64); ok {
		return id
	}
	return 0
}

func ContextWithEmployeeID(ctx context.Context, employeeID int64) context.Context {
	return context.WithValue(ctx, ContextEmployeeKey, employeeID)
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if role, ok := ctx.Value(ContextRoleKey).(string); ok {
		return role
	}
	return ""
}

func ContextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextRoleKey, role)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
