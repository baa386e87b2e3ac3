package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// statusForCode maps wire error codes to HTTP status codes. Server-caused
// codes map to 5xx and are never presented as client-fixable errors.
func statusForCode(code string) int {
	switch code {
	case api.CodeValidationError:
		return http.StatusBadRequest
	case api.CodeUserExists:
		return http.StatusConflict
	case api.CodeInvalidCredentials, api.CodeInvalidToken, api.CodeTokenExpired, api.CodeUnauthorized:
		return http.StatusUnauthorized
	case api.CodeConfigError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sendJSON writes a JSON response with the given status code.
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes the error envelope. message must already be safe for the
// client; internal diagnostics stay in the logs.
func sendError(logger *slog.Logger, w http.ResponseWriter, code, message string) {
	resp := api.ErrorResponse{
		Success: false,
		Error: api.Error{
			Code:    code,
			Message: message,
		},
	}
	sendJSON(logger, w, resp, statusForCode(code))
}
