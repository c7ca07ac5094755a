package cli

import (
	"context"
	"fmt"

	"github.com/taskforge/taskforge/internal/validation"
	"github.com/taskforge/taskforge/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	name, err := c.io.ReadInput("Name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 6 chars): ")
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

	user, err := c.client.Register(ctx, api.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return err
	}

	if err := c.rememberUser(ctx, user); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", user.ID)
	c.io.Printf("Email:   %s\n", user.Email)
	c.io.Println()
	c.io.Println("You are now logged in.")

	return nil
}
