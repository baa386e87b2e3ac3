package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runList(ctx context.Context) error {
	prompts, err := c.prompts.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local prompts: %w", err)
	}

	if len(prompts) == 0 {
		c.io.Println("No local prompts.")
		return nil
	}

	c.io.Printf("Local prompts (%d):\n", len(prompts))
	c.io.Println()
	for _, p := range prompts {
		marker := " "
		if p.Migrated {
			marker = "✓"
		}
		c.io.Printf("[%s] %s  %s\n", marker, p.ID, p.Title)
	}
	c.io.Println()
	c.io.Println("✓ = uploaded to server")

	return nil
}
