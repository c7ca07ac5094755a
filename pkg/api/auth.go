package api

import (
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`          // email пользователя
	Password string `json:"password"`       // пароль (минимум 6 символов)
	Name     string `json:"name,omitempty"` // отображаемое имя (опционально)
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPayload представляет пользователя в ответах API
// Хеш пароля наружу не отдается никогда
type UserPayload struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role"`
}

// UserResponse представляет ответ с пользователем
// User равен null, когда вызывающий не аутентифицирован (GET /api/auth/me)
type UserResponse struct {
	User *UserPayload `json:"user"`
}

// MessageResponse представляет ответ с информационным сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuditEntry представляет запись audit log в ответах API
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	UserID    string    `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditListResponse представляет страницу audit log
type AuditListResponse struct {
	Data []AuditEntry `json:"data"`
	Meta Meta         `json:"meta"`
}
