package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing task ID. Usage: taskforge get <id>")
	}

	taskID := args[0]

	resp, err := c.client.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	task := resp.Data

	c.io.Println("=== Task Details ===")
	c.io.Println()
	c.io.Printf("Title:    %s\n", task.Title)
	c.io.Printf("ID:       %s\n", task.ID)
	c.io.Printf("Status:   %s\n", task.Status)
	c.io.Printf("Priority: %s\n", task.Priority)
	if task.Description != "" {
		c.io.Printf("Details:  %s\n", task.Description)
	}
	if task.DueDate != nil {
		c.io.Printf("Due:      %s\n", task.DueDate.Format("2006-01-02"))
	}
	c.io.Printf("Created:  %s\n", task.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Updated:  %s\n", task.UpdatedAt.Format(time.RFC3339))

	if len(resp.Activity) > 0 {
		c.io.Println()
		c.io.Println("Recent activity:")
		for _, entry := range resp.Activity {
			c.io.Printf("  %s  %s", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Action)
			if entry.Details != "" {
				c.io.Printf("  %s", entry.Details)
			}
			c.io.Println()
		}
	}

	return nil
}
