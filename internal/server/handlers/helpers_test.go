package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/audit"
	"github.com/taskforge/taskforge/internal/server/storage"
)

const testSecret = "test-secret-key"

// setupTestLogger создает slog logger, отбрасывающий вывод
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*models.User // email -> User
	createError error
	getError    error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockTaskStorage is a mock implementation of TaskStorage for testing
type mockTaskStorage struct {
	tasks       map[string]*models.Task // id -> Task
	createError error
	getError    error
	updateError error
}

func newMockTaskStorage() *mockTaskStorage {
	return &mockTaskStorage{tasks: make(map[string]*models.Task)}
}

func (m *mockTaskStorage) CreateTask(ctx context.Context, task *models.Task) error {
	if m.createError != nil {
		return m.createError
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStorage) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, storage.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (m *mockTaskStorage) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]*models.Task, int, error) {
	var result []*models.Task
	for _, task := range m.tasks {
		if task.DeletedAt != nil {
			continue
		}
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		cp := *task
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockTaskStorage) UpdateTask(ctx context.Context, task *models.Task) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return storage.ErrTaskNotFound
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStorage) SoftDeleteTask(ctx context.Context, taskID string) error {
	task, ok := m.tasks[taskID]
	if !ok || task.DeletedAt != nil {
		return storage.ErrTaskNotFound
	}
	now := task.UpdatedAt
	task.DeletedAt = &now
	return nil
}

// mockLogStorage is a mock implementation of both log storages for testing
type mockLogStorage struct {
	activities []*models.ActivityLog
	audits     []*models.AuditLog
}

func (m *mockLogStorage) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	m.activities = append(m.activities, entry)
	return nil
}

func (m *mockLogStorage) ListTaskActivity(ctx context.Context, taskID string, limit int) ([]*models.ActivityLog, error) {
	var result []*models.ActivityLog
	for i := len(m.activities) - 1; i >= 0 && len(result) < limit; i-- {
		if m.activities[i].TaskID == taskID {
			result = append(result, m.activities[i])
		}
	}
	return result, nil
}

func (m *mockLogStorage) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	m.audits = append(m.audits, entry)
	return nil
}

func (m *mockLogStorage) ListAudit(ctx context.Context, page, limit int) ([]*models.AuditLog, int, error) {
	total := len(m.audits)
	var result []*models.AuditLog
	start := (page - 1) * limit
	for i := total - 1 - start; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.audits[i])
	}
	return result, total, nil
}

// newTestRecorder создает recorder поверх общего mock хранилища логов
func newTestRecorder(logs *mockLogStorage) *audit.Recorder {
	return audit.NewRecorder(setupTestLogger(), logs, logs)
}

// requestWithIdentity кладет идентичность в контекст запроса,
// как это делает auth middleware
func requestWithIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), id))
}

// lastAudit возвращает последнюю audit запись или nil
func lastAudit(logs *mockLogStorage) *models.AuditLog {
	if len(logs.audits) == 0 {
		return nil
	}
	return logs.audits[len(logs.audits)-1]
}

// cookieByName ищет cookie в ответе
func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
