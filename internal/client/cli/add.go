package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/validation"
	"github.com/taskforge/taskforge/pkg/api"
)

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "Task title (prompted when omitted)")
	description := fs.String("desc", "", "Task description")
	status := fs.String("status", "", "Initial status (default TODO)")
	priority := fs.String("priority", "", "Priority (default MEDIUM)")
	due := fs.String("due", "", "Due date, YYYY-MM-DD")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		input, err := c.io.ReadInput("Title: ")
		if err != nil {
			return fmt.Errorf("failed to read title: %w", err)
		}
		*title = input
	}

	if err := validation.ValidateTitle(*title); err != nil {
		return err
	}

	req := api.CreateTaskRequest{
		Title:       *title,
		Description: *description,
		Status:      models.Status(*status),
		Priority:    models.Priority(*priority),
	}

	if *due != "" {
		dueDate, err := time.Parse("2006-01-02", *due)
		if err != nil {
			return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", *due)
		}
		req.DueDate = &dueDate
	}

	resp, err := c.client.CreateTask(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Task created!")
	c.io.Printf("ID:       %s\n", resp.Data.ID)
	c.io.Printf("Title:    %s\n", resp.Data.Title)
	c.io.Printf("Status:   %s\n", resp.Data.Status)
	c.io.Printf("Priority: %s\n", resp.Data.Priority)

	return nil
}
