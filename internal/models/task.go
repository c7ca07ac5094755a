package models

import "time"

// Status определяет состояние задачи в жизненном цикле
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusArchived   Status = "ARCHIVED"
)

// Valid проверяет, что статус является одним из известных
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Priority определяет приоритет задачи
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid проверяет, что приоритет является одним из известных
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task представляет задачу пользователя
// Description хранится в БД в зашифрованном виде (envelope iv:tag:ciphertext),
// наружу всегда отдается расшифрованный текст
type Task struct {
	ID          string     `json:"id"`                 // UUID задачи
	Title       string     `json:"title"`              // заголовок (обязателен)
	Description string     `json:"description"`        // описание, encrypted-at-rest
	Status      Status     `json:"status"`             // TODO / IN_PROGRESS / DONE / ARCHIVED
	Priority    Priority   `json:"priority"`           // LOW / MEDIUM / HIGH / URGENT
	DueDate     *time.Time `json:"due_date,omitempty"` // срок выполнения (опционально)
	UserID      string     `json:"user_id"`            // владелец задачи
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"` // soft delete, запись не удаляется
}

// Deleted сообщает, удалена ли задача (soft delete)
func (t *Task) Deleted() bool {
	return t.DeletedAt != nil
}
