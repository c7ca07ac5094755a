// Package config собирает конфигурацию сервера из окружения
// Приоритет: флаги командной строки > переменные окружения > значения по умолчанию
package config

import (
	"os"
	"strconv"
	"time"
)

// Значения по умолчанию
const (
	DefaultAddr       = ":8080"
	DefaultDBPath     = "data/taskforge.db"
	DefaultRateLimit  = 200
	DefaultRateWindow = time.Minute
)

// Config содержит конфигурацию сервера
type Config struct {
	Addr          string        // адрес HTTP listener
	DBPath        string        // путь к файлу SQLite
	JWTSecret     string        // секрет подписи токенов
	EncryptionKey string        // ключ шифрования полей; "" включает dev-ключ
	SecureCookies bool          // Secure флаг на session cookies (за TLS)
	FailClosed    bool          // ошибки расшифровки полей становятся ошибками запроса
	RateLimit     int           // запросов на IP за окно
	RateWindow    time.Duration // длина окна rate limit
}

// FromEnv собирает конфигурацию из переменных окружения TASKFORGE_*
func FromEnv() *Config {
	return &Config{
		Addr:          EnvOrDefault("TASKFORGE_ADDR", DefaultAddr),
		DBPath:        EnvOrDefault("TASKFORGE_DB_PATH", DefaultDBPath),
		JWTSecret:     os.Getenv("TASKFORGE_JWT_SECRET"),
		EncryptionKey: os.Getenv("TASKFORGE_ENCRYPTION_KEY"),
		SecureCookies: envBool("TASKFORGE_SECURE_COOKIES", false),
		FailClosed:    envBool("TASKFORGE_FAIL_CLOSED", false),
		RateLimit:     envInt("TASKFORGE_RATE_LIMIT", DefaultRateLimit),
		RateWindow:    envDuration("TASKFORGE_RATE_WINDOW", DefaultRateWindow),
	}
}

// EnvOrDefault возвращает значение переменной окружения или fallback
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
