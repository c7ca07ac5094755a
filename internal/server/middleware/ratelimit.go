package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateLimiter ограничивает частоту запросов по ключу (IP адресу)
// Фиксированное окно: счетчик и время сброса на каждый ключ
// Состояние сбрасывается лениво при истечении окна, фонового sweep нет
// Явная структура вместо package-level глобалов: для multi-instance
// деплоя ее можно заменить реализацией поверх общего кеша
type RateLimiter struct {
	windows map[string]*window
	logger  *slog.Logger
	limit   int
	period  time.Duration
	mu      sync.Mutex
}

// window представляет счетчик для конкретного ключа
type window struct {
	resetAt time.Time
	count   int
}

// NewRateLimiter создает rate limiter
// limit - максимальное количество запросов за period
func NewRateLimiter(limit int, period time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		logger:  logger,
	}
}

// Allow проверяет, разрешен ли запрос для данного ключа
// Мутации карты и счетчиков сериализованы mutex: инвариант
// "не более limit за окно" держится при параллельных запросах
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	w, exists := rl.windows[key]
	if !exists || now.After(w.resetAt) {
		// Новое окно: ленивый сброс при первом запросе после истечения
		rl.windows[key] = &window{
			count:   1,
			resetAt: now.Add(rl.period),
		}
		return true
	}

	if w.count >= rl.limit {
		return false
	}

	w.count++
	return true
}

// RateLimitMiddleware отклоняет запросы сверх лимита до любой другой обработки
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		for idx := 0; idx < len(xff); idx++ {
			if xff[idx] == ',' {
				return xff[:idx]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
