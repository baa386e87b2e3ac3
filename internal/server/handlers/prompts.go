package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/storage"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// PromptHandler serves the prompt-upload surface used by client migration.
// Routes are mounted behind the auth middleware.
type PromptHandler struct {
	logger  *slog.Logger
	prompts storage.PromptStorage
}

// NewPromptHandler creates a new prompt handler.
func NewPromptHandler(logger *slog.Logger, prompts storage.PromptStorage) *PromptHandler {
	return &PromptHandler{
		logger:  logger,
		prompts: prompts,
	}
}

// Create handles POST /api/prompts.
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthorized, "authentication required")
		return
	}

	var req api.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode prompt request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeValidationError, "invalid request body")
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, api.CodeValidationError, "title is required")
		return
	}
	if req.Content == "" {
		sendError(h.logger, w, api.CodeValidationError, "content is required")
		return
	}

	now := time.Now()
	prompt := &models.Prompt{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.prompts.CreatePrompt(ctx, prompt); err != nil {
		h.logger.ErrorContext(ctx, "failed to create prompt", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "prompt created",
		slog.String("prompt_id", prompt.ID),
		slog.String("user_id", userID))

	resp := api.PromptResponse{
		Success: true,
		Prompt: api.PromptInfo{
			ID:        prompt.ID,
			Title:     prompt.Title,
			Content:   prompt.Content,
			CreatedAt: prompt.CreatedAt.Unix(),
		},
	}
	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// List handles GET /api/prompts.
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthorized, "authentication required")
		return
	}

	prompts, err := h.prompts.ListPromptsByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list prompts", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInternalError, "internal server error")
		return
	}

	resp := api.PromptListResponse{
		Success: true,
		Prompts: make([]api.PromptInfo, 0, len(prompts)),
	}
	for _, p := range prompts {
		resp.Prompts = append(resp.Prompts, api.PromptInfo{
			ID:        p.ID,
			Title:     p.Title,
			Content:   p.Content,
			CreatedAt: p.CreatedAt.Unix(),
		})
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}
