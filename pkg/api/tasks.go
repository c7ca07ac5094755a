package api

import (
	"encoding/json"
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

// OptionalDate различает в JSON три состояния поля dueDate:
// отсутствие (не менять), явный null (очистить) и дату
type OptionalDate struct {
	Time *time.Time
	Set  bool
}

// IsZero сообщает omitzero, что незаполненное поле надо опустить
func (d OptionalDate) IsZero() bool { return !d.Set }

func (d OptionalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}

func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if string(data) == "null" {
		d.Time = nil
		return nil
	}
	return json.Unmarshal(data, &d.Time)
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      models.Status   `json:"status,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
}

// UpdateTaskRequest представляет частичное обновление задачи
// Nil-поле означает "не менять"
type UpdateTaskRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *models.Status   `json:"status,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	DueDate     OptionalDate     `json:"dueDate,omitzero"`
}

// TaskPayload представляет задачу в ответах API
// Title и Description уже расшифрованы
type TaskPayload struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ActivityEntry представляет запись истории изменений задачи
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Meta представляет метаданные пагинации
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TaskResponse представляет ответ с одной задачей и ее историей
type TaskResponse struct {
	Data     TaskPayload     `json:"data"`
	Activity []ActivityEntry `json:"activity,omitempty"`
}

// UpdateTaskResponse представляет результат обновления задачи
// Message заполняется только когда обновление ничего не изменило
type UpdateTaskResponse struct {
	Message string      `json:"message,omitempty"`
	Data    TaskPayload `json:"data"`
}

// TaskListResponse представляет страницу задач
type TaskListResponse struct {
	Data []TaskPayload `json:"data"`
	Meta Meta          `json:"meta"`
}
