package storage

import (
	"context"
	"time"
)

// SessionStorage defines interface for storing the CLI session on disk
// Tokens are stored as received from the server; the local database file
// is protected by filesystem permissions only.
type SessionStorage interface {
	// SaveSession stores the session, replacing any previous one
	SaveSession(ctx context.Context, session *SessionData) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if no session exists
	GetSession(ctx context.Context) (*SessionData, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error

	// IsAuthenticated reports whether a usable session exists
	// (the refresh token has not expired yet)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// SessionData represents one logged-in session
type SessionData struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Role             string `json:"role"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"` // unix seconds
}

// Expired сообщает, истек ли refresh токен сессии
func (s *SessionData) Expired() bool {
	return time.Now().Unix() >= s.RefreshExpiresAt
}
