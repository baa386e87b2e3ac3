// Package api defines the wire types shared by the Promptomatik server and
// client. All endpoints answer with either a success envelope or an
// ErrorResponse; the HTTP status code and the error code always agree.
package api

// Error codes returned in ErrorResponse.Error.Code.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeConfigError        = "CONFIG_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo carries the public user fields. The password and its digest are
// never part of any response.
type UserInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

// AuthResponse is returned by register and login on success.
type AuthResponse struct {
	Success bool     `json:"success"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token"`
}

// RefreshResponse is returned by POST /api/auth/refresh on success.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// CreatePromptRequest is the body of POST /api/prompts.
type CreatePromptRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PromptInfo describes a stored prompt.
type PromptInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// PromptResponse is returned by POST /api/prompts on success.
type PromptResponse struct {
	Success bool       `json:"success"`
	Prompt  PromptInfo `json:"prompt"`
}

// PromptListResponse is returned by GET /api/prompts.
type PromptListResponse struct {
	Success bool         `json:"success"`
	Prompts []PromptInfo `json:"prompts"`
}

// Error is the structured error value inside ErrorResponse.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface so the client can surface the server
// error directly.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}
