package middleware

import (
	"log/slog"
	"net/http"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/handlers"
	"github.com/taskforge/taskforge/internal/server/session"
	"github.com/taskforge/taskforge/internal/server/token"
)

// AuthMiddleware создает middleware для проверки access токена
// Токен читается из cookie, проверяется через codec; проверенная
// идентичность кладется в контекст запроса, downstream handlers
// токен повторно не проверяют
func AuthMiddleware(logger *slog.Logger, codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.AccessCookieName)
			if err != nil || cookie.Value == "" {
				logger.Warn("Missing access token cookie", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			// Отсутствующий и невалидный токен неразличимы для клиента
			claims, err := codec.VerifyType(cookie.Value, token.TypeAccess)
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				unauthorized(w)
				return
			}

			identity := handlers.Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			}
			ctx := handlers.WithIdentity(r.Context(), identity)

			logger.Debug("User authenticated",
				"user_id", identity.UserID,
				"role", string(identity.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole создает middleware для RBAC проверки
// Вешается ПОСЛЕ AuthMiddleware: идентичность уже в контексте
func RequireRole(logger *slog.Logger, role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := handlers.GetIdentity(r.Context())
			if !ok {
				logger.Error("RequireRole used without AuthMiddleware", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			if identity.Role != role {
				logger.Warn("Insufficient role",
					"user_id", identity.UserID,
					"role", string(identity.Role),
					"required", string(role),
					"path", r.URL.Path)
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"Forbidden"}`))
}
