package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Greg-Swiftomatic/promptomatik/internal/token"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	if !c.session.IsAuthenticated() {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'promptomatik login' to authenticate.")
		return c.printPendingPrompts(ctx)
	}

	user, _ := c.session.CurrentUser()
	c.io.Println("Status: Authenticated")
	c.io.Printf("Name:  %s\n", user.FirstName)
	c.io.Printf("Email: %s\n", user.Email)

	// Expiry comes from the locally decoded payload; no server round trip.
	accessToken, err := c.session.AccessToken()
	if err == nil {
		if payload, err := token.DecodePayload(accessToken); err == nil {
			expiresAt := time.Unix(payload.ExpiresAt, 0)
			c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))
			if remaining := time.Until(expiresAt); remaining > 0 {
				c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
			} else {
				c.io.Println("⚠️  Token has expired. Please login again.")
			}
		}
	}

	return c.printPendingPrompts(ctx)
}

func (c *Cli) printPendingPrompts(ctx context.Context) error {
	prompts, err := c.prompts.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local prompts: %w", err)
	}

	pending := 0
	for _, p := range prompts {
		if !p.Migrated {
			pending++
		}
	}

	c.io.Println()
	if pending > 0 {
		c.io.Printf("⚠️  %d local prompt(s) waiting to be uploaded\n", pending)
		c.io.Println("Run 'promptomatik migrate' to upload them.")
	} else {
		c.io.Printf("Local prompts: %d, all uploaded\n", len(prompts))
	}

	return nil
}
