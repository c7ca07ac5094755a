package models

import "time"

// Действия, записываемые в activity log задач
const (
	ActionTaskCreated   = "TASK_CREATED"
	ActionTaskUpdated   = "TASK_UPDATED"
	ActionTaskDeleted   = "TASK_DELETED"
	ActionStatusChanged = "STATUS_CHANGED"
)

// Действия, записываемые в системный audit log
const (
	AuditUserRegistered = "USER_REGISTERED"
	AuditUserLogin      = "USER_LOGIN"
	AuditLoginFailed    = "LOGIN_FAILED"
	AuditTokenRefreshed = "TOKEN_REFRESHED"
	AuditUserLogout     = "USER_LOGOUT"
)

// ActivityLog представляет одну запись в истории изменений задачи
// Записи append-only: после создания никогда не изменяются и не удаляются
type ActivityLog struct {
	ID        string    `json:"id"`                // UUID записи
	TaskID    string    `json:"task_id"`           // задача, к которой относится запись
	UserID    string    `json:"user_id"`           // кто выполнил действие
	Action    string    `json:"action"`            // тип действия (TASK_CREATED, ...)
	Details   string    `json:"details,omitempty"` // JSON с деталями изменения
	CreatedAt time.Time `json:"created_at"`
}

// AuditLog представляет запись системного audit log
// В отличие от ActivityLog не привязан к задаче: фиксирует security-события
type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`   // тип события (USER_LOGIN, ...)
	Resource  string    `json:"resource"` // затронутый ресурс ("auth", "task:<id>")
	UserID    string    `json:"user_id"`  // кто выполнил действие
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Details   string    `json:"details,omitempty"` // JSON с деталями
	CreatedAt time.Time `json:"created_at"`
}
