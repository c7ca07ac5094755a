package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/crypto"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/audit"
	"github.com/taskforge/taskforge/internal/server/handlers"
	"github.com/taskforge/taskforge/internal/server/middleware"
	"github.com/taskforge/taskforge/internal/server/session"
	"github.com/taskforge/taskforge/internal/server/storage/sqlite"
	"github.com/taskforge/taskforge/internal/server/token"
	"github.com/taskforge/taskforge/pkg/api"
)

// setupTestServer собирает полный стек поверх in-memory SQLite
func setupTestServer(t *testing.T) (*httptest.Server, *sqlite.Storage) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	codec := token.NewCodec([]byte("test-secret"))
	sessions := session.NewManager(codec, false)
	cipher := crypto.NewFieldCipher("integration-test-key", false)
	recorder := audit.NewRecorder(logger, store, store)
	limiter := middleware.NewRateLimiter(1000, time.Minute, logger)

	router := NewRouter(logger, codec, limiter, Handlers{
		Auth:   handlers.NewAuthHandler(logger, store, sessions, codec, recorder),
		Tasks:  handlers.NewTasksHandler(logger, store, store, cipher, recorder),
		Audit:  handlers.NewAuditHandler(logger, store),
		Health: handlers.NewHealthHandler(logger, store.DB(), "test"),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, store
}

// newSessionClient возвращает HTTP клиент с cookie jar
func newSessionClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_EndToEnd(t *testing.T) {
	srv, store := setupTestServer(t)
	client := newSessionClient(t)

	// Регистрация выставляет обе cookies и возвращает пользователя без пароля
	resp := postJSON(t, client, srv.URL+"/api/auth/register", api.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	registered := decodeBody[api.UserResponse](t, resp)
	require.NotNil(t, registered.User)
	assert.Equal(t, models.RoleUser, registered.User.Role)

	// Создание задачи без описания
	resp = postJSON(t, client, srv.URL+"/api/tasks", api.CreateTaskRequest{Title: "x"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[api.TaskResponse](t, resp)
	assert.Equal(t, "x", created.Data.Title)
	// Пустое описание в хранилище остается пустым и расшифровывается в пустоту
	assert.Empty(t, created.Data.Description)

	stored, err := store.GetTaskByID(context.Background(), created.Data.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Description)

	// Обновление статуса TODO -> DONE дает ровно одну STATUS_CHANGED запись
	status := models.StatusDone
	data, err := json.Marshal(api.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)

	putReq, err := http.NewRequest(http.MethodPut, srv.URL+"/api/tasks/"+created.Data.ID, bytes.NewReader(data))
	require.NoError(t, err)
	putReq.Header.Set("Content-Type", "application/json")

	putResp, err := client.Do(putReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, putResp.StatusCode)
	_ = putResp.Body.Close()

	entries, err := store.ListTaskActivity(context.Background(), created.Data.ID, 20)
	require.NoError(t, err)

	var statusChanges []*models.ActivityLog
	for _, e := range entries {
		if e.Action == models.ActionStatusChanged {
			statusChanges = append(statusChanges, e)
		}
	}
	require.Len(t, statusChanges, 1)

	var details map[string]string
	require.NoError(t, json.Unmarshal([]byte(statusChanges[0].Details), &details))
	assert.Equal(t, "TODO", details["from"])
	assert.Equal(t, "DONE", details["to"])
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	srv, _ := setupTestServer(t)
	client := newSessionClient(t)

	resp := postJSON(t, client, srv.URL+"/api/auth/register", api.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Чистый клиент без cookies
	fresh := newSessionClient(t)
	resp = postJSON(t, fresh, srv.URL+"/api/auth/login", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	errResp := decodeBody[api.ErrorResponse](t, resp)
	assert.Equal(t, "Invalid credentials", errResp.Error)
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_AuditRequiresAdmin(t *testing.T) {
	srv, store := setupTestServer(t)
	client := newSessionClient(t)

	resp := postJSON(t, client, srv.URL+"/api/auth/register", api.RegisterRequest{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Обычному пользователю audit log недоступен
	auditResp, err := client.Get(srv.URL + "/api/audit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, auditResp.StatusCode)
	_ = auditResp.Body.Close()

	// Повышаем пользователя до админа напрямую в БД и логинимся заново
	_, err = store.DB().Exec("UPDATE users SET role = ? WHERE email = ?", models.RoleAdmin, "user@example.com")
	require.NoError(t, err)

	admin := newSessionClient(t)
	resp = postJSON(t, admin, srv.URL+"/api/auth/login", api.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	auditResp, err = admin.Get(srv.URL + "/api/audit")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, auditResp.StatusCode)

	page := decodeBody[api.AuditListResponse](t, auditResp)
	// Регистрация и оба логина уже оставили след
	assert.GreaterOrEqual(t, page.Meta.Total, 2)
}

func TestRouter_Health(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
