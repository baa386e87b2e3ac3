package cli

import "context"

func (c *Cli) runRefresh(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		c.io.Println("Not logged in.")
		return nil
	}

	c.io.Println("Refreshing token...")

	if err := c.session.RefreshToken(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Token refreshed.")
	return nil
}
