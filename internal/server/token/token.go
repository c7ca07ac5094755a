package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskforge/taskforge/internal/models"
)

// Type различает назначение токена
// Access токен никогда не принимается там, где ожидается refresh, и наоборот
type Type string

const (
	// TypeAccess - короткоживущий токен для API запросов
	TypeAccess Type = "access"
	// TypeRefresh - долгоживущий токен только для выпуска новых access токенов
	TypeRefresh Type = "refresh"
)

// Claims представляет JWT claims сессионного токена
type Claims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	TokenType Type        `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет сессионные токены
// Один общий секрет процесса: проверка stateless, без session store
type Codec struct {
	secret []byte
}

// NewCodec создает codec с указанным секретом
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue создает подписанный токен с указанным временем жизни
func (c *Codec) Issue(userID string, role models.Role, tokenType Type, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "taskforge",
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify проверяет подпись и срок действия токена
// Любой дефект (битый формат, неверная подпись, истекший срок) возвращает
// ошибку: вызывающие обрабатывают "нет токена" и "невалидный токен" одинаково
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Принимаем только HMAC: защита от подмены алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// VerifyType проверяет токен и дополнительно сверяет его назначение
// Несовпадение типа всегда fail closed
func (c *Codec) VerifyType(tokenString string, want Type) (*Claims, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != want {
		return nil, fmt.Errorf("unexpected token type: got %q, want %q", claims.TokenType, want)
	}

	return claims, nil
}
