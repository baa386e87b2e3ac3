package handlers

import "context"

// contextKey is a private type for request context values set by the auth
// middleware.
type contextKey string

const (
	// UserIDKey holds the authenticated user's ID.
	UserIDKey contextKey = "user_id"
	// EmailKey holds the authenticated user's email.
	EmailKey contextKey = "email"
)

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}
