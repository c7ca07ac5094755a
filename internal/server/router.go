// Package server собирает HTTP маршруты и цепочки middleware
package server

import (
	"log/slog"
	"net/http"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/handlers"
	"github.com/taskforge/taskforge/internal/server/middleware"
	"github.com/taskforge/taskforge/internal/server/token"
)

// Handlers содержит все HTTP handlers приложения
type Handlers struct {
	Auth   *handlers.AuthHandler
	Tasks  *handlers.TasksHandler
	Audit  *handlers.AuditHandler
	Health *handlers.HealthHandler
}

// NewRouter собирает ServeMux с middleware цепочками
// Порядок: recovery -> logging -> rate limit -> [auth -> [RBAC]] -> handler
// Rate limit стоит до аутентификации: лимит защищает и сам login
func NewRouter(
	logger *slog.Logger,
	codec *token.Codec,
	limiter *middleware.RateLimiter,
	h Handlers,
) http.Handler {
	authn := middleware.AuthMiddleware(logger, codec)
	adminOnly := middleware.RequireRole(logger, models.RoleAdmin)

	protected := func(next http.Handler) http.Handler {
		return authn(next)
	}
	admin := func(next http.Handler) http.Handler {
		return authn(adminOnly(next))
	}

	mux := http.NewServeMux()

	// Открытые маршруты
	mux.HandleFunc("GET /api/health", h.Health.Health)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	// Me сам разбирает cookie: отсутствие сессии здесь не ошибка
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)

	// Маршруты задач: только аутентифицированные
	mux.Handle("GET /api/tasks", protected(http.HandlerFunc(h.Tasks.List)))
	mux.Handle("POST /api/tasks", protected(http.HandlerFunc(h.Tasks.Create)))
	mux.Handle("GET /api/tasks/{id}", protected(http.HandlerFunc(h.Tasks.Get)))
	mux.Handle("PUT /api/tasks/{id}", protected(http.HandlerFunc(h.Tasks.Update)))
	mux.Handle("DELETE /api/tasks/{id}", protected(http.HandlerFunc(h.Tasks.Delete)))

	// Audit log: только админы
	mux.Handle("GET /api/audit", admin(http.HandlerFunc(h.Audit.List)))

	// Внешняя цепочка применяется ко всем маршрутам
	var root http.Handler = mux
	root = middleware.RateLimitMiddleware(limiter, logger)(root)
	root = middleware.LoggingMiddleware(logger)(root)
	root = middleware.RecoveryMiddleware(logger)(root)

	return root
}
