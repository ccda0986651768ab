package services

import (
	"context"
	"strings"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// Use a private type for context keys to avoid collisions
type serviceContextKey string

const (
	ctxKeyUserID serviceContextKey = "user_id"
)

// ContextWithUser injects the acting user into the context
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, strings.TrimSpace(userID))
}

// UserFromContext retrieves the acting user, defaulting to domain.DefaultUserID
func UserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyUserID).(string); ok && id != "" {
		return id
	}
	return domain.DefaultUserID
}
