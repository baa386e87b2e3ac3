package sqlite

import (
	"context"
	"fmt"

	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
)

// CreatePrompt inserts a new prompt record.
func (s *Storage) CreatePrompt(ctx context.Context, prompt *models.Prompt) error {
	query := `
		INSERT INTO prompts (id, user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		prompt.ID,
		prompt.UserID,
		prompt.Title,
		prompt.Content,
		prompt.CreatedAt,
		prompt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}

	return nil
}

// ListPromptsByUser returns all prompts owned by the user, newest first.
func (s *Storage) ListPromptsByUser(ctx context.Context, userID string) ([]*models.Prompt, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM prompts
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	prompts := []*models.Prompt{}
	for rows.Next() {
		prompt := &models.Prompt{}
		if err := rows.Scan(
			&prompt.ID,
			&prompt.UserID,
			&prompt.Title,
			&prompt.Content,
			&prompt.CreatedAt,
			&prompt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompts: %w", err)
	}

	return prompts, nil
}
