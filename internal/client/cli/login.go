package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Logging in...")

	rec, err := c.session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("✓ Logged in as %s (%s)\n", rec.User.FirstName, rec.User.Email)

	c.printMigrationHint()

	return nil
}
