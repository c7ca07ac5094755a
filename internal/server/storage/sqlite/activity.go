package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskforge/taskforge/internal/models"
)

// AppendActivity stores a new activity log entry
func (s *Storage) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, task_id, user_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var details sql.NullString
	if entry.Details != "" {
		details = sql.NullString{String: entry.Details, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.UserID,
		entry.Action,
		details,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	return nil
}

// ListTaskActivity returns newest-first activity entries for a task
func (s *Storage) ListTaskActivity(ctx context.Context, taskID string, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, task_id, user_id, action, details, created_at
		FROM activity_logs
		WHERE task_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		entry := &models.ActivityLog{}
		var details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.UserID,
			&entry.Action,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}

		if details.Valid {
			entry.Details = details.String
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}

	return entries, nil
}

// AppendAudit stores a new audit log entry
func (s *Storage) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, action, resource, user_id, ip_address, user_agent, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var details sql.NullString
	if entry.Details != "" {
		details = sql.NullString{String: entry.Details, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Resource,
		entry.UserID,
		entry.IPAddress,
		entry.UserAgent,
		details,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// ListAudit returns newest-first audit entries with pagination
func (s *Storage) ListAudit(ctx context.Context, page, limit int) ([]*models.AuditLog, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := `
		SELECT id, action, resource, user_id, ip_address, user_agent, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var ip, userAgent, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Resource,
			&entry.UserID,
			&ip,
			&userAgent,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}

		entry.IPAddress = ip.String
		entry.UserAgent = userAgent.String
		entry.Details = details.String

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return entries, total, nil
}
