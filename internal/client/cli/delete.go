package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing task ID. Usage: taskforge delete <id>")
	}

	taskID := args[0]

	// Показываем, что именно удаляем
	resp, err := c.client.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	c.io.Println("About to delete:")
	c.io.Printf("  Title:  %s\n", resp.Data.Title)
	c.io.Printf("  Status: %s\n", resp.Data.Status)
	c.io.Println()

	confirm, err := c.io.ReadInput("Are you sure you want to delete this task? (yes/no): ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if confirm != "yes" && confirm != "y" {
		c.io.Println()
		c.io.Println("Deletion cancelled.")
		return nil
	}

	if err := c.client.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Task deleted successfully!")

	return nil
}
