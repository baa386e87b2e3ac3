package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
)

func (c *Cli) runAdd(ctx context.Context) error {
	c.io.Println("=== Add Prompt ===")
	c.io.Println()

	title, err := c.io.ReadInput("Title: ")
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	content, err := c.io.ReadInput("Content: ")
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content cannot be empty")
	}

	rec := &storage.PromptRecord{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := c.prompts.SavePrompt(ctx, rec); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}

	c.io.Println()
	c.io.Printf("✓ Prompt saved locally (id %s)\n", rec.ID)
	if c.session.IsAuthenticated() {
		c.io.Println("Run 'promptomatik migrate' to upload it.")
	}

	return nil
}
