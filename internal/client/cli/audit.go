package cli

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"strconv"
)

func (c *Cli) runAudit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 10, "Page size")

	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if *page > 1 {
		query.Set("page", strconv.Itoa(*page))
	}
	if *limit != 10 {
		query.Set("limit", strconv.Itoa(*limit))
	}

	resp, err := c.client.ListAudit(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list audit log: %w", err)
	}

	c.io.Println("=== Audit Log ===")
	c.io.Println()

	if len(resp.Data) == 0 {
		c.io.Println("No audit entries found.")
		return nil
	}

	for _, entry := range resp.Data {
		c.io.Printf("%s  %-18s %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.Resource)
		c.io.Printf("   User: %s", entry.UserID)
		if entry.IPAddress != "" {
			c.io.Printf("  IP: %s", entry.IPAddress)
		}
		c.io.Println()
		if entry.Details != "" {
			c.io.Printf("   %s\n", entry.Details)
		}
		c.io.Println()
	}

	c.io.Printf("Page %d of %d (%d entr(ies) total)\n",
		resp.Meta.Page, resp.Meta.TotalPages, resp.Meta.Total)

	return nil
}
