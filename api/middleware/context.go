package middleware

import (
	"context"

	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext parses the authenticated user id, returning nil when absent.
func UserUUIDFromContext(ctx context.Context) *uuid.UUID {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func RoleFromContext(ctx context.Context) enums.MemberRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.MemberRole); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role enums.MemberRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
