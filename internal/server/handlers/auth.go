package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/audit"
	"github.com/taskforge/taskforge/internal/server/session"
	"github.com/taskforge/taskforge/internal/server/storage"
	"github.com/taskforge/taskforge/internal/server/token"
	"github.com/taskforge/taskforge/internal/validation"
	"github.com/taskforge/taskforge/pkg/api"
)

// BcryptCost - стоимость хеширования паролей
const BcryptCost = 10

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	sessions    *session.Manager
	codec       *token.Codec
	recorder    *audit.Recorder
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	sessions *session.Manager,
	codec *token.Codec,
	recorder *audit.Recorder,
) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		sessions:    sessions,
		codec:       codec,
		recorder:    recorder,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.logger.WarnContext(ctx, "invalid email", slog.String("email", req.Email), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateName(req.Name); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("email", req.Email))
			sendError(h.logger, w, "User already exists", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	pair, err := h.sessions.IssuePair(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token pair", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookies(w, pair)

	h.recorder.Audit(ctx, models.AuditUserRegistered, "auth", user.ID,
		clientIP(r), r.UserAgent(), map[string]string{"email": user.Email})

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("email", user.Email),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.UserResponse{User: userPayload(user)}, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
// Неизвестный email и неверный пароль неразличимы для вызывающего
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(h.logger, w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", req.Email))
			h.recorder.Audit(ctx, models.AuditLoginFailed, "auth", "",
				clientIP(r), r.UserAgent(), map[string]string{"email": req.Email})
			sendError(h.logger, w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("email", req.Email))
		h.recorder.Audit(ctx, models.AuditLoginFailed, "auth", user.ID,
			clientIP(r), r.UserAgent(), map[string]string{"email": req.Email})
		sendError(h.logger, w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	pair, err := h.sessions.IssuePair(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token pair", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookies(w, pair)

	h.recorder.Audit(ctx, models.AuditUserLogin, "auth", user.ID,
		clientIP(r), r.UserAgent(), nil)

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("email", user.Email),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.UserResponse{User: userPayload(user)}, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh
// Выпускает новый access токен по refresh cookie
// Refresh токен НЕ ротируется: живет до естественного истечения
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var refreshToken string
	if c, err := r.Cookie(session.RefreshCookieName); err == nil {
		refreshToken = c.Value
	}

	access, err := h.sessions.Refresh(refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			h.logger.WarnContext(ctx, "refresh failed: invalid refresh token")
			sendError(h.logger, w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to refresh access token", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.sessions.SetAccessCookie(w, access)

	// Идентичность для audit берем из только что выпущенного токена
	if claims, err := h.codec.VerifyType(access, token.TypeAccess); err == nil {
		h.recorder.Audit(ctx, models.AuditTokenRefreshed, "auth", claims.UserID,
			clientIP(r), r.UserAgent(), nil)
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "Token refreshed successfully"}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Списка отзыва нет: logout лишь очищает cookies вызывающего
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Best-effort идентичность для audit: logout работает и без валидного токена
	actorID := ""
	if c, err := r.Cookie(session.AccessCookieName); err == nil {
		if claims, err := h.codec.VerifyType(c.Value, token.TypeAccess); err == nil {
			actorID = claims.UserID
		}
	}

	h.sessions.ClearCookies(w)

	h.recorder.Audit(ctx, models.AuditUserLogout, "auth", actorID,
		clientIP(r), r.UserAgent(), nil)

	h.logger.InfoContext(ctx, "user logged out", slog.String("user_id", actorID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Logged out successfully"}, http.StatusOK)
}

// Me обрабатывает GET /api/auth/me
// Всегда отвечает 200: отсутствие сессии здесь не ошибка, user равен null
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := r.Cookie(session.AccessCookieName)
	if err != nil {
		sendJSON(h.logger, w, api.UserResponse{User: nil}, http.StatusOK)
		return
	}

	claims, err := h.codec.VerifyType(c.Value, token.TypeAccess)
	if err != nil {
		sendJSON(h.logger, w, api.UserResponse{User: nil}, http.StatusOK)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		}
		sendJSON(h.logger, w, api.UserResponse{User: nil}, http.StatusOK)
		return
	}

	sendJSON(h.logger, w, api.UserResponse{User: userPayload(user)}, http.StatusOK)
}

// userPayload конвертирует пользователя в API представление без хеша пароля
func userPayload(u *models.User) *api.UserPayload {
	return &api.UserPayload{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
