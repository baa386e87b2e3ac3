package cli

import (
	"context"
	"fmt"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/session"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	firstName, err := c.io.ReadInput("First name: ")
	if err != nil {
		return fmt.Errorf("failed to read first name: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	c.io.Println()
	c.io.Println("Registering...")

	rec, err := c.session.Register(ctx, firstName, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", rec.User.ID)
	c.io.Printf("Email:   %s\n", rec.User.Email)

	c.printMigrationHint()

	return nil
}

// printMigrationHint tells the user about pending local prompts after a
// successful login or registration. The check runs in the background, so
// only an already-known Pending state is reported.
func (c *Cli) printMigrationHint() {
	if c.session.MigrationState() == session.MigrationPending {
		c.io.Println()
		c.io.Println("You have local prompts that are not on the server yet.")
		c.io.Println("Run 'promptomatik migrate' to upload them.")
	}
}
