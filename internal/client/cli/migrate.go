package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runMigrate(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		return fmt.Errorf("not authenticated, run 'promptomatik login' first")
	}

	c.io.Println("=== Prompt Migration ===")
	c.io.Println()

	report, err := c.session.RunMigration(ctx)
	if err != nil {
		return err
	}

	if report.Total == 0 {
		c.io.Println("Nothing to migrate.")
		return nil
	}

	c.io.Printf("Migrated %d of %d prompt(s)\n", report.Migrated, report.Total)
	if report.Failed > 0 {
		c.io.Printf("⚠️  %d prompt(s) failed and will be retried next time\n", report.Failed)
	} else {
		c.io.Println("✓ All prompts uploaded.")
	}

	return nil
}
