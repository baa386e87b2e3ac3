package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Greg-Swiftomatic/promptomatik/internal/crypto"
	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/storage"
	"github.com/Greg-Swiftomatic/promptomatik/internal/token"
	"github.com/Greg-Swiftomatic/promptomatik/internal/validation"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// TokenConfig holds what the handlers need to issue and verify tokens.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// AuthHandler serves registration, login, refresh, and logout.
type AuthHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	hasher crypto.Hasher
	cfg    TokenConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, hasher crypto.Hasher, cfg TokenConfig) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
		hasher: hasher,
		cfg:    cfg,
	}
}

// configured reports whether the server has what it needs to issue tokens.
// A missing secret or store is a deployment problem, not a client error.
func (h *AuthHandler) configured() bool {
	return len(h.cfg.Secret) > 0 && h.users != nil
}

// issueToken signs a fresh token for the user with the fixed TTL.
func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	ttl := h.cfg.TTL
	if ttl == 0 {
		ttl = token.DefaultTTL
	}
	payload := token.NewPayload(user.ID, user.Email, user.FirstName, time.Now(), ttl)
	return token.Encode(payload, h.cfg.Secret)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeValidationError, "invalid request body")
		return
	}

	if err := validation.ValidateFirstName(req.FirstName); err != nil {
		sendError(h.logger, w, api.CodeValidationError, err.Error())
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, api.CodeValidationError, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, api.CodeValidationError, err.Error())
		return
	}

	if !h.configured() {
		h.logger.ErrorContext(ctx, "registration rejected: server not configured")
		sendError(h.logger, w, api.CodeConfigError, "server is not configured")
		return
	}

	// Fast-path uniqueness check; the unique index on email is the real
	// guarantee under concurrent registration attempts.
	_, err := h.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		h.logger.WarnContext(ctx, "registration conflict", slog.String("email", req.Email))
		sendError(h.logger, w, api.CodeUserExists, "an account with this email already exists")
		return
	case !errors.Is(err, storage.ErrUserNotFound):
		h.logger.ErrorContext(ctx, "failed to check existing user", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	digest, err := h.hasher.Digest(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New().String(),
		FirstName:      req.FirstName,
		Email:          req.Email,
		PasswordDigest: digest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "registration conflict on insert", slog.String("email", req.Email))
			sendError(h.logger, w, api.CodeUserExists, "an account with this email already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	signed, err := h.issueToken(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email))

	resp := api.AuthResponse{
		Success: true,
		User: api.UserInfo{
			ID:        user.ID,
			FirstName: user.FirstName,
			Email:     user.Email,
		},
		Token: signed,
	}
	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeValidationError, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(h.logger, w, api.CodeValidationError, "email and password are required")
		return
	}

	if !h.configured() {
		h.logger.ErrorContext(ctx, "login rejected: server not configured")
		sendError(h.logger, w, api.CodeConfigError, "server is not configured")
		return
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: unknown email", slog.String("email", req.Email))
			sendError(h.logger, w, api.CodeInvalidCredentials, "invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	if err := h.hasher.Verify(req.Password, user.PasswordDigest); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			h.logger.WarnContext(ctx, "login failed: bad password", slog.String("user_id", user.ID))
			sendError(h.logger, w, api.CodeInvalidCredentials, "invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify password", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	signed, err := h.issueToken(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	resp := api.AuthResponse{
		Success: true,
		User: api.UserInfo{
			ID:        user.ID,
			FirstName: user.FirstName,
			Email:     user.Email,
		},
		Token: signed,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Refresh handles POST /api/auth/refresh. The presented token must still be
// valid; a fresh token with a full TTL is issued. There is no rotation state
// on the server.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthorized, "missing or invalid Authorization header")
		return
	}

	if !h.configured() {
		h.logger.ErrorContext(ctx, "refresh rejected: server not configured")
		sendError(h.logger, w, api.CodeConfigError, "server is not configured")
		return
	}

	payload, err := token.Verify(current, h.cfg.Secret)
	if err != nil {
		code := api.CodeInvalidToken
		if errors.Is(err, token.ErrExpiredToken) {
			code = api.CodeTokenExpired
		}
		h.logger.WarnContext(ctx, "refresh failed: bad token", slog.Any("error", err))
		sendError(h.logger, w, code, "invalid or expired token")
		return
	}

	// Re-read the user so a token is never refreshed for a deleted account.
	user, err := h.users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "refresh failed: user gone", slog.String("user_id", payload.UserID))
			sendError(h.logger, w, api.CodeInvalidToken, "invalid or expired token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	signed, err := h.issueToken(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "token refreshed", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.RefreshResponse{Success: true, Token: signed}, http.StatusOK)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this only
// acknowledges the client-side logout; the client clears its own session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthorized, "missing or invalid Authorization header")
		return
	}

	payload, err := token.Verify(current, h.cfg.Secret)
	if err != nil {
		h.logger.WarnContext(ctx, "logout with invalid token", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidToken, "invalid or expired token")
		return
	}

	h.logger.InfoContext(ctx, "user logged out", slog.String("user_id", payload.UserID))

	w.WriteHeader(http.StatusNoContent)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
