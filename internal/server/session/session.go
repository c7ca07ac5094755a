package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/token"
)

// Имена cookies, в которых живут токены сессии
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// Времена жизни токенов
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrUnauthenticated возвращается, когда refresh токен отсутствует,
// истек или имеет неверный тип: клиент обязан пройти полный login
var ErrUnauthenticated = errors.New("unauthenticated")

// Pair содержит пару токенов одной сессии
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Manager выпускает пары токенов и управляет session cookies
// Server-side списка отзыва нет: logout лишь очищает cookies вызывающего,
// утекший refresh токен остается валидным до естественного истечения
type Manager struct {
	codec  *token.Codec
	secure bool
}

// NewManager создает менеджер сессий
// secure включает Secure флаг на cookies (production за TLS)
func NewManager(codec *token.Codec, secure bool) *Manager {
	return &Manager{
		codec:  codec,
		secure: secure,
	}
}

// IssuePair выпускает access (15 мин) и refresh (7 дней) токены
// для одной и той же идентичности
func (m *Manager) IssuePair(userID string, role models.Role) (*Pair, error) {
	access, err := m.codec.Issue(userID, role, token.TypeAccess, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := m.codec.Issue(userID, role, token.TypeRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// SetCookies записывает оба токена как httpOnly strict cookies
// MaxAge каждой cookie совпадает с TTL соответствующего токена
func (m *Manager) SetCookies(w http.ResponseWriter, pair *Pair) {
	http.SetCookie(w, m.cookie(AccessCookieName, pair.AccessToken, int(AccessTokenTTL.Seconds())))
	http.SetCookie(w, m.cookie(RefreshCookieName, pair.RefreshToken, int(RefreshTokenTTL.Seconds())))
}

// SetAccessCookie перезаписывает только access cookie (после refresh)
func (m *Manager) SetAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, m.cookie(AccessCookieName, accessToken, int(AccessTokenTTL.Seconds())))
}

// ClearCookies удаляет обе session cookies (logout)
func (m *Manager) ClearCookies(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(AccessCookieName, "", -1))
	http.SetCookie(w, m.cookie(RefreshCookieName, "", -1))
}

// Refresh проверяет refresh токен и выпускает новый access токен
// для той же идентичности. Токен неверного типа, истекший или битый
// дает ErrUnauthenticated: клиент должен пройти полный re-login
func (m *Manager) Refresh(refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrUnauthenticated
	}

	claims, err := m.codec.VerifyType(refreshToken, token.TypeRefresh)
	if err != nil {
		return "", ErrUnauthenticated
	}

	access, err := m.codec.Issue(claims.UserID, claims.Role, token.TypeAccess, AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return access, nil
}

// cookie собирает cookie с общими атрибутами сессии
func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
