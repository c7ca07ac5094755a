package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/api"
)

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing task ID. Usage: taskforge update <id> [flags]")
	}

	taskID := args[0]

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	description := fs.String("desc", "", "New description")
	status := fs.String("status", "", "New status")
	priority := fs.String("priority", "", "New priority")
	due := fs.String("due", "", "New due date, YYYY-MM-DD (empty value clears it)")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	// Отправляются только явно переданные флаги:
	// сервер различает "не менять" и "установить пустое"
	var req api.UpdateTaskRequest
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			req.Title = title
		case "desc":
			req.Description = description
		case "status":
			s := models.Status(*status)
			req.Status = &s
		case "priority":
			p := models.Priority(*priority)
			req.Priority = &p
		case "due":
			if *due == "" {
				// Пустое значение очищает дату
				req.DueDate = api.OptionalDate{Set: true}
				return
			}
			dueDate, err := time.Parse("2006-01-02", *due)
			if err != nil {
				parseErr = fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", *due)
				return
			}
			req.DueDate = api.OptionalDate{Set: true, Time: &dueDate}
		}
	})
	if parseErr != nil {
		return parseErr
	}

	if req.Title == nil && req.Description == nil && req.Status == nil &&
		req.Priority == nil && !req.DueDate.Set {
		return fmt.Errorf("nothing to update, pass at least one flag (see 'update -h')")
	}

	resp, err := c.client.UpdateTask(ctx, taskID, req)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	c.io.Println()
	if resp.Message != "" {
		c.io.Printf("%s\n", resp.Message)
		return nil
	}

	c.io.Println("✓ Task updated!")
	c.io.Printf("Title:    %s\n", resp.Data.Title)
	c.io.Printf("Status:   %s\n", resp.Data.Status)
	c.io.Printf("Priority: %s\n", resp.Data.Priority)

	return nil
}
