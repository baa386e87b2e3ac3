package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Greg-Swiftomatic/promptomatik/internal/server/config"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

func newTestApp(t *testing.T, jwtSecret string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		DatabasePath:   ":memory:",
		JWTSecret:      jwtSecret,
		TokenTTL:       time.Hour,
		PasswordScheme: "sha256",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := NewApp(context.Background(), cfg, logger, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.Close())
	})

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, bearer string, body, result any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if result != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(result))
	}
	return resp
}

func TestApp_RegisterLoginFlow(t *testing.T) {
	srv := newTestApp(t, "integration-secret")

	var registered api.AuthResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	}, &registered)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, registered.Success)
	assert.NotEmpty(t, registered.Token)

	// Second registration with the same email conflicts.
	var conflict api.ErrorResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		FirstName: "Other",
		Email:     "dana@example.com",
		Password:  "different",
	}, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, api.CodeUserExists, conflict.Error.Code)

	var loggedIn api.AuthResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "dana@example.com",
		Password: "pw123",
	}, &loggedIn)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	var refreshed api.RefreshResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/refresh", loggedIn.Token, nil, &refreshed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, refreshed.Token)

	resp = doJSON(t, srv, http.MethodPost, "/api/auth/logout", refreshed.Token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestApp_PromptFlow(t *testing.T) {
	srv := newTestApp(t, "integration-secret")

	var auth api.AuthResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	}, &auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Unauthenticated upload is rejected by the middleware.
	var unauthorized api.ErrorResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/prompts", "", api.CreatePromptRequest{
		Title:   "t",
		Content: "c",
	}, &unauthorized)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, api.CodeUnauthorized, unauthorized.Error.Code)

	var created api.PromptResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/prompts", auth.Token, api.CreatePromptRequest{
		Title:   "Greeting",
		Content: "Say hello to {{name}}",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.Prompt.ID)

	var list api.PromptListResponse
	resp = doJSON(t, srv, http.MethodGet, "/api/prompts", auth.Token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Prompts, 1)
	assert.Equal(t, "Greeting", list.Prompts[0].Title)
}

func TestApp_NotConfigured(t *testing.T) {
	// No JWT secret: health still answers, auth reports a config problem.
	srv := newTestApp(t, "")

	resp := doJSON(t, srv, http.MethodGet, "/api/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var errResp api.ErrorResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Password:  "pw123",
	}, &errResp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, api.CodeConfigError, errResp.Error.Code)
}

func TestApp_SecurityHeadersApplied(t *testing.T) {
	srv := newTestApp(t, "integration-secret")

	resp := doJSON(t, srv, http.MethodGet, "/api/health", "", nil, nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
