package storage

import (
	"context"

	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
)

// PromptStorage defines persistence for uploaded prompts.
type PromptStorage interface {
	// CreatePrompt inserts a new prompt record.
	CreatePrompt(ctx context.Context, prompt *models.Prompt) error

	// ListPromptsByUser returns all prompts owned by the user, newest first.
	// Returns an empty slice when the user has no prompts.
	ListPromptsByUser(ctx context.Context, userID string) ([]*models.Prompt, error)
}
