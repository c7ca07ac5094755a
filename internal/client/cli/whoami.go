package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runWhoami(ctx context.Context) error {
	user, err := c.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	if user == nil {
		c.io.Println("Not authenticated.")
		c.io.Println("Run 'taskforge login' to authenticate.")
		return nil
	}

	c.io.Printf("User ID: %s\n", user.ID)
	c.io.Printf("Email:   %s\n", user.Email)
	if user.Name != "" {
		c.io.Printf("Name:    %s\n", user.Name)
	}
	c.io.Printf("Role:    %s\n", user.Role)

	return nil
}
