package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskforge/taskforge/internal/client/storage"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	// Ошибка сервера не мешает удалить локальную сессию
	if err := c.client.Logout(ctx); err != nil {
		c.io.Printf("Warning: server logout failed: %v\n", err)
	}

	if err := c.sessions.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("No local session found.")
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}
