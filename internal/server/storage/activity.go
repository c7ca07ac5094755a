package storage

import (
	"context"

	"github.com/taskforge/taskforge/internal/models"
)

// ActivityStorage defines interface for per-task activity log persistence
// Записи append-only: интерфейс сознательно не дает UPDATE/DELETE
type ActivityStorage interface {
	// AppendActivity stores a new activity log entry
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error

	// ListTaskActivity returns newest-first activity entries for a task,
	// capped at limit
	ListTaskActivity(ctx context.Context, taskID string, limit int) ([]*models.ActivityLog, error)
}

// AuditStorage defines interface for system-wide audit log persistence
// Append-only, как и ActivityStorage
type AuditStorage interface {
	// AppendAudit stores a new audit log entry
	AppendAudit(ctx context.Context, entry *models.AuditLog) error

	// ListAudit returns newest-first audit entries with pagination
	// and the total number of entries
	ListAudit(ctx context.Context, page, limit int) ([]*models.AuditLog, int, error)
}
