package models

import "time"

// Role определяет уровень доступа пользователя
type Role string

const (
	// RoleUser - обычный пользователь, видит только свои задачи
	RoleUser Role = "USER"
	// RoleAdmin - администратор, видит все задачи и audit log
	RoleAdmin Role = "ADMIN"
)

// Valid проверяет, что роль является одной из известных
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // уникальный email
	Name         string    `json:"name"`       // отображаемое имя (опционально)
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля, никогда не сериализуется
	Role         Role      `json:"role"`       // роль для RBAC
	CreatedAt    time.Time `json:"created_at"` // время создания
	UpdatedAt    time.Time `json:"updated_at"` // время последнего обновления
}

// PublicUser возвращает представление пользователя без чувствительных полей
func (u *User) PublicUser() *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
