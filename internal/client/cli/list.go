package cli

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"strconv"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (TODO, IN_PROGRESS, DONE, ARCHIVED)")
	priority := fs.String("priority", "", "Filter by priority (LOW, MEDIUM, HIGH, URGENT)")
	search := fs.String("search", "", "Search in task titles")
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 10, "Page size")
	sortBy := fs.String("sort", "", "Sort column (createdAt, updatedAt, dueDate, priority, title)")
	order := fs.String("order", "", "Sort order (asc, desc)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if *status != "" {
		query.Set("status", *status)
	}
	if *priority != "" {
		query.Set("priority", *priority)
	}
	if *search != "" {
		query.Set("search", *search)
	}
	if *page > 1 {
		query.Set("page", strconv.Itoa(*page))
	}
	if *limit != 10 {
		query.Set("limit", strconv.Itoa(*limit))
	}
	if *sortBy != "" {
		query.Set("sortBy", *sortBy)
	}
	if *order != "" {
		query.Set("sortOrder", *order)
	}

	resp, err := c.client.ListTasks(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	c.io.Println("=== Tasks ===")
	c.io.Println()

	if len(resp.Data) == 0 {
		c.io.Println("No tasks found.")
		c.io.Println()
		c.io.Println("Use 'taskforge add' to create your first task.")
		return nil
	}

	for i, task := range resp.Data {
		c.io.Printf("%d. [%s] %s (%s)\n", i+1, task.Status, task.Title, task.Priority)
		c.io.Printf("   ID: %s\n", task.ID)
		if task.Description != "" {
			c.io.Printf("   %s\n", task.Description)
		}
		if task.DueDate != nil {
			c.io.Printf("   Due: %s\n", task.DueDate.Format("2006-01-02"))
		}
		c.io.Println()
	}

	c.io.Printf("Page %d of %d (%d task(s) total)\n",
		resp.Meta.Page, resp.Meta.TotalPages, resp.Meta.Total)

	return nil
}
