package storage

import (
	"context"

	"github.com/taskforge/taskforge/internal/models"
)

// Направления сортировки списка задач
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TaskFilter описывает параметры выборки списка задач
// UserID пустой для админа (видит все задачи), иначе выборка
// ограничена владельцем. Soft-deleted записи не возвращаются никогда
type TaskFilter struct {
	UserID    string          // ограничение по владельцу; "" - без ограничения
	Search    string          // case-insensitive подстрока в title
	Status    models.Status   // фильтр по статусу; "" - без фильтра
	Priority  models.Priority // фильтр по приоритету; "" - без фильтра
	SortBy    string          // колонка сортировки (whitelist в реализации)
	SortOrder string          // SortAsc или SortDesc
	Page      int             // номер страницы, с 1
	Limit     int             // размер страницы
}

// TaskStorage defines interface for task persistence
type TaskStorage interface {
	// CreateTask stores a new task
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTaskByID retrieves a task by ID including soft-deleted rows;
	// callers decide how to treat DeletedAt
	GetTaskByID(ctx context.Context, taskID string) (*models.Task, error)

	// ListTasks returns a page of tasks matching the filter and the
	// total number of matching rows
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, int, error)

	// UpdateTask persists changed task fields
	// Returns ErrTaskNotFound if task doesn't exist
	UpdateTask(ctx context.Context, task *models.Task) error

	// SoftDeleteTask sets deleted_at without removing the row
	// Returns ErrTaskNotFound if task doesn't exist
	SoftDeleteTask(ctx context.Context, taskID string) error
}
