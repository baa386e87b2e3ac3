// Package api provides the HTTP client for the Promptomatik server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// Client is the HTTP client for the server API. Errors returned by the
// server in the standard envelope come back as *api.Error so callers can
// inspect the code.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context, currentToken string) (*api.RefreshResponse, error) {
	var resp api.RefreshResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", currentToken, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the server of a client-side logout.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doRequest(ctx, http.MethodPost, "/api/auth/logout", accessToken, nil, nil)
}

// CreatePrompt uploads one prompt; used by the migration flow.
func (c *Client) CreatePrompt(ctx context.Context, accessToken string, req api.CreatePromptRequest) (*api.PromptResponse, error) {
	var resp api.PromptResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/prompts", accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest performs one HTTP round trip. A non-2xx response with the
// standard envelope is returned as *api.Error.
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return &api.Error{Code: errResp.Error.Code, Message: errResp.Error.Message}
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
