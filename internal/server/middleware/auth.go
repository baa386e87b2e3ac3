package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Greg-Swiftomatic/promptomatik/internal/server/handlers"
	"github.com/Greg-Swiftomatic/promptomatik/internal/token"
)

// Auth verifies the bearer token on protected routes and puts the user's
// identity into the request context.
func Auth(logger *slog.Logger, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				unauthorized(w, "missing token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("invalid Authorization header format", "path", r.URL.Path)
				unauthorized(w, "invalid token format")
				return
			}

			payload, err := token.Verify(parts[1], secret)
			if err != nil {
				logger.Warn("invalid access token", "error", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.UserIDKey, payload.UserID)
			ctx = context.WithValue(ctx, handlers.EmailKey, payload.Email)

			logger.Debug("user authenticated", "user_id", payload.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}
