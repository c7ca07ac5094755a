package handlers

import (
	"context"

	"github.com/taskforge/taskforge/internal/models"
)

// Identity - проверенная идентичность вызывающего
// Конструируется ТОЛЬКО Access Guard middleware после валидации токена;
// никогда не десериализуется из входящих заголовков, чтобы обход guard
// (например, прямой вызов handler) не открывал спуфинг идентичности
type Identity struct {
	UserID string
	Role   models.Role
}

// Admin сообщает, обладает ли вызывающий правами администратора
func (i Identity) Admin() bool {
	return i.Role == models.RoleAdmin
}

// contextKey - приватный тип ключа контекста, исключает коллизии
type contextKey string

// identityKey - ключ, под которым guard кладет Identity в контекст
const identityKey contextKey = "identity"

// WithIdentity возвращает контекст с проверенной идентичностью
// Вызывается только из auth middleware
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity извлекает идентичность из контекста запроса
// Второе значение false, если запрос не прошел через auth middleware
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
