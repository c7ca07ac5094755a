package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/storage"
)

func newTestTask(userID, title string) *models.Task {
	now := time.Now()
	return &models.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seedUser(t *testing.T, s *Storage, email string) *models.User {
	t.Helper()
	user := newTestUser(email)
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestTaskStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	task := newTestTask(user.ID, "Buy milk")
	task.Description = "deadbeef:cafebabe:0102" // envelope сохраняется как есть
	task.DueDate = &due

	require.NoError(t, s.CreateTask(ctx, task))

	retrieved, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, retrieved.Title)
	assert.Equal(t, task.Description, retrieved.Description)
	assert.Equal(t, models.StatusTodo, retrieved.Status)
	assert.Equal(t, models.PriorityMedium, retrieved.Priority)
	require.NotNil(t, retrieved.DueDate)
	assert.WithinDuration(t, due, *retrieved.DueDate, time.Second)
	assert.Nil(t, retrieved.DeletedAt)
}

func TestTaskStorage_GetTask_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetTaskByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)
}

func TestTaskStorage_UpdateTask(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")
	task := newTestTask(user.ID, "Original title")
	require.NoError(t, s.CreateTask(ctx, task))

	task.Title = "Updated title"
	task.Status = models.StatusDone
	task.Priority = models.PriorityUrgent
	task.UpdatedAt = time.Now()
	require.NoError(t, s.UpdateTask(ctx, task))

	retrieved, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", retrieved.Title)
	assert.Equal(t, models.StatusDone, retrieved.Status)
	assert.Equal(t, models.PriorityUrgent, retrieved.Priority)
}

func TestTaskStorage_UpdateTask_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	task := newTestTask(uuid.New().String(), "ghost")
	err := s.UpdateTask(ctx, task)
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)
}

func TestTaskStorage_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")
	task := newTestTask(user.ID, "To be deleted")
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.SoftDeleteTask(ctx, task.ID))

	// Строка остается, deleted_at установлен
	retrieved, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, retrieved.DeletedAt)

	// Повторное удаление - ErrTaskNotFound
	err = s.SoftDeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)

	// Из списков задача исчезает
	tasks, total, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
}

func TestTaskStorage_ListTasks_Filters(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")

	done := newTestTask(alice.ID, "Ship release")
	done.Status = models.StatusDone
	done.Priority = models.PriorityHigh
	require.NoError(t, s.CreateTask(ctx, done))

	todo := newTestTask(alice.ID, "Write release notes")
	require.NoError(t, s.CreateTask(ctx, todo))

	other := newTestTask(bob.ID, "Ship another release")
	require.NoError(t, s.CreateTask(ctx, other))

	tests := []struct {
		name      string
		filter    storage.TaskFilter
		wantTotal int
	}{
		{
			name:      "all tasks for alice",
			filter:    storage.TaskFilter{UserID: alice.ID},
			wantTotal: 2,
		},
		{
			name:      "admin sees everything",
			filter:    storage.TaskFilter{},
			wantTotal: 3,
		},
		{
			name:      "filter by status",
			filter:    storage.TaskFilter{UserID: alice.ID, Status: models.StatusDone},
			wantTotal: 1,
		},
		{
			name:      "filter by priority",
			filter:    storage.TaskFilter{UserID: alice.ID, Priority: models.PriorityHigh},
			wantTotal: 1,
		},
		{
			name:      "search is case-insensitive substring",
			filter:    storage.TaskFilter{UserID: alice.ID, Search: "ship"},
			wantTotal: 1,
		},
		{
			name:      "search without owner restriction",
			filter:    storage.TaskFilter{Search: "release"},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, total, err := s.ListTasks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, tasks, tt.wantTotal)
		})
	}
}

func TestTaskStorage_ListTasks_Pagination(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")
	for i := 0; i < 25; i++ {
		task := newTestTask(user.ID, fmt.Sprintf("Task %02d", i))
		task.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, s.CreateTask(ctx, task))
	}

	first, total, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, first, 10)

	last, total, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID, Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, last, 5)
}

func TestTaskStorage_ListTasks_Sorting(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := seedUser(t, s, "alice@example.com")

	for i, title := range []string{"banana", "apple", "cherry"} {
		task := newTestTask(user.ID, title)
		task.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateTask(ctx, task))
	}

	asc, _, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID, SortBy: "title", SortOrder: storage.SortAsc})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "apple", asc[0].Title)
	assert.Equal(t, "cherry", asc[2].Title)

	// Default: createdAt desc
	byCreated, _, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "cherry", byCreated[0].Title)

	// Неизвестная колонка сортировки не попадает в SQL: работает default
	unknown, _, err := s.ListTasks(ctx, storage.TaskFilter{UserID: user.ID, SortBy: "title; DROP TABLE tasks"})
	require.NoError(t, err)
	assert.Len(t, unknown, 3)
}
