package auth

import (
	"context"
	"strings"
)

type ctxKey string

const (
	memberIDKey ctxKey = "auth_member_id"
	roleKey     ctxKey = "auth_role"
)

// ContextWithMember stores the authenticated member identity in the context.
func ContextWithMember(ctx context.Context, memberID, role string) context.Context {
	ctx = context.WithValue(ctx, memberIDKey, strings.TrimSpace(memberID))
	role = strings.TrimSpace(strings.ToLower(role))
	if role != "" {
		ctx = context.WithValue(ctx, roleKey, role)
	}
	return ctx
}

// MemberIDFromContext extracts the authenticated member id from context.
func MemberIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(memberIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// RoleFromContext returns the role stored in context, or "" when absent.
func RoleFromContext(ctx context.Context) string {
	v, ok := ctx.Value(roleKey).(string)
	if !ok {
		return ""
	}
	return v
}
