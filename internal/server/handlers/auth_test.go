package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Greg-Swiftomatic/promptomatik/internal/crypto"
	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/storage"
	"github.com/Greg-Swiftomatic/promptomatik/internal/token"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

var testSecret = []byte("handler-test-secret")

// mockUserStorage is an in-memory UserStorage.
type mockUserStorage struct {
	users map[string]*models.User // keyed by email
	err   error                  // forced error for every call
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthHandler(users *mockUserStorage) *AuthHandler {
	return NewAuthHandler(testLogger(), users, crypto.SHA256Hasher{}, TokenConfig{
		Secret: testSecret,
		TTL:    time.Hour,
	})
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	users := newMockUserStorage()
	h := newTestAuthHandler(users)

	w := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Dana", resp.User.FirstName)
	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)

	// The token must verify with the server secret and carry the user.
	payload, err := token.Verify(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, payload.UserID)
	assert.Equal(t, "dana@example.com", payload.Email)

	// The stored digest is not the plaintext.
	stored := users.users["dana@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw123", stored.PasswordDigest)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	users := newMockUserStorage()
	h := newTestAuthHandler(users)

	req := api.RegisterRequest{FirstName: "Dana", Email: "dana@example.com", Password: "pw123"}
	w := postJSON(t, h.Register, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Register, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, api.CodeUserExists, resp.Error.Code)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"missing first name", api.RegisterRequest{Email: "a@b.com", Password: "pw"}},
		{"bad email", api.RegisterRequest{FirstName: "A", Email: "not-an-email", Password: "pw"}},
		{"missing password", api.RegisterRequest{FirstName: "A", Email: "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Register, "/api/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, api.CodeValidationError, resp.Error.Code)
		})
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeValidationError, resp.Error.Code)
}

func TestAuthHandler_Register_NotConfigured(t *testing.T) {
	// No signing secret: valid input must come back as a server-side
	// config problem, not a client error.
	h := NewAuthHandler(testLogger(), newMockUserStorage(), crypto.SHA256Hasher{}, TokenConfig{})

	w := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeConfigError, resp.Error.Code)
}

func TestAuthHandler_Register_StorageError(t *testing.T) {
	users := newMockUserStorage()
	users.err = errors.New("disk on fire")
	h := newTestAuthHandler(users)

	w := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeInternalError, resp.Error.Code)
	// Internal details never leak into the envelope.
	assert.NotContains(t, resp.Error.Message, "disk on fire")
}

func registerTestUser(t *testing.T, h *AuthHandler, email, password string) {
	t.Helper()

	w := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		FirstName: "Dana",
		Email:     email,
		Password:  password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())
	registerTestUser(t, h, "dana@example.com", "pw123")

	w := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{
		Email:    "dana@example.com",
		Password: "pw123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	_, err := token.Verify(resp.Token, testSecret)
	assert.NoError(t, err)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())
	registerTestUser(t, h, "dana@example.com", "pw123")

	tests := []struct {
		name string
		req  api.LoginRequest
	}{
		{"wrong password", api.LoginRequest{Email: "dana@example.com", Password: "wrong"}},
		{"unknown email", api.LoginRequest{Email: "nobody@example.com", Password: "pw123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Login, "/api/auth/login", tt.req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			// Same code either way; the response does not reveal whether
			// the account exists.
			resp := decodeError(t, w)
			assert.Equal(t, api.CodeInvalidCredentials, resp.Error.Code)
			assert.Equal(t, "invalid email or password", resp.Error.Message)
		})
	}
}

func refreshRequest(tokenString string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	if tokenString != "" {
		req.Header.Set("Authorization", "Bearer "+tokenString)
	}
	return req
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	users := newMockUserStorage()
	h := newTestAuthHandler(users)
	registerTestUser(t, h, "dana@example.com", "pw123")
	user := users.users["dana@example.com"]

	payload := token.NewPayload(user.ID, user.Email, user.FirstName,
		time.Now().Add(-30*time.Minute), time.Hour)
	current, err := token.Encode(payload, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Refresh(w, refreshRequest(current))

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	// The fresh token gets a full TTL.
	fresh, err := token.Verify(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fresh.UserID)
	assert.Greater(t, fresh.ExpiresAt, payload.ExpiresAt)
}

func TestAuthHandler_Refresh_ExpiredToken(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	payload := token.NewPayload("id", "e@example.com", "E",
		time.Now().Add(-2*time.Hour), time.Hour)
	expired, err := token.Encode(payload, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Refresh(w, refreshRequest(expired))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeTokenExpired, resp.Error.Code)
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	w := httptest.NewRecorder()
	h.Refresh(w, refreshRequest("garbage-token"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeInvalidToken, resp.Error.Code)
}

func TestAuthHandler_Refresh_MissingHeader(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	w := httptest.NewRecorder()
	h.Refresh(w, refreshRequest(""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeUnauthorized, resp.Error.Code)
}

func TestAuthHandler_Refresh_UserGone(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	payload := token.NewPayload("deleted-user", "gone@example.com", "G",
		time.Now(), time.Hour)
	current, err := token.Encode(payload, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Refresh(w, refreshRequest(current))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeInvalidToken, resp.Error.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	payload := token.NewPayload("id", "e@example.com", "E", time.Now(), time.Hour)
	current, err := token.Encode(payload, testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+current)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthHandler_Logout_InvalidToken(t *testing.T) {
	h := newTestAuthHandler(newMockUserStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"missing", "", "", false},
		{"no token", "Bearer ", "", false},
		{"wrong scheme", "Basic abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
