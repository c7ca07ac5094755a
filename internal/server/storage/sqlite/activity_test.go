package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/models"
)

func TestActivityStorage_AppendAndList(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")
	task := newTestTask(user.ID, "Tracked task")
	require.NoError(t, s.CreateTask(ctx, task))

	actions := []string{models.ActionTaskCreated, models.ActionStatusChanged, models.ActionTaskUpdated}
	for i, action := range actions {
		entry := &models.ActivityLog{
			ID:        uuid.New().String(),
			TaskID:    task.ID,
			UserID:    user.ID,
			Action:    action,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		if action == models.ActionStatusChanged {
			entry.Details = `{"from":"TODO","to":"DONE"}`
		}
		require.NoError(t, s.AppendActivity(ctx, entry))
	}

	entries, err := s.ListTaskActivity(ctx, task.ID, 20)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Новые записи первыми
	assert.Equal(t, models.ActionTaskUpdated, entries[0].Action)
	assert.Equal(t, models.ActionTaskCreated, entries[2].Action)
	assert.Equal(t, `{"from":"TODO","to":"DONE"}`, entries[1].Details)
}

func TestActivityStorage_ListLimit(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")
	task := newTestTask(user.ID, "Busy task")
	require.NoError(t, s.CreateTask(ctx, task))

	for i := 0; i < 30; i++ {
		require.NoError(t, s.AppendActivity(ctx, &models.ActivityLog{
			ID:        uuid.New().String(),
			TaskID:    task.ID,
			UserID:    user.ID,
			Action:    models.ActionTaskUpdated,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := s.ListTaskActivity(ctx, task.ID, 20)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestAuditStorage_AppendAndList(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for i := 0; i < 15; i++ {
		entry := &models.AuditLog{
			ID:        uuid.New().String(),
			Action:    models.AuditUserLogin,
			Resource:  "auth",
			UserID:    "user-1",
			IPAddress: "192.0.2.1",
			UserAgent: "test-agent",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.AppendAudit(ctx, entry))
	}

	entries, total, err := s.ListAudit(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, entries, 10)
	assert.Equal(t, "192.0.2.1", entries[0].IPAddress)
	assert.Equal(t, "test-agent", entries[0].UserAgent)

	second, total, err := s.ListAudit(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, second, 5)
}
