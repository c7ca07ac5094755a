// Package api реализует HTTP клиент сервера с прозрачным обновлением
// access токена: на 401 выполняется один refresh и один повтор запроса
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/taskforge/taskforge/internal/client/storage"
	"github.com/taskforge/taskforge/internal/server/session"
	"github.com/taskforge/taskforge/pkg/api"
)

// ErrSessionExpired возвращается, когда refresh не помог:
// пользователь должен выполнить login заново
var ErrSessionExpired = errors.New("session expired, please login again")

const refreshPath = "/api/auth/refresh"

// Client представляет HTTP клиент для взаимодействия с сервером
// Безопасен для конкурентного использования: при одновременных 401
// выполняется не более одного refresh запроса, остальные вызовы
// ждут его результата
type Client struct {
	httpClient *http.Client
	sessions   storage.SessionStorage
	baseURL    string

	// Refresh коалесцируется: первый вызвавший выполняет запрос,
	// остальные встают в очередь waiters и получают его результат
	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

// NewClient создает новый API клиент
func NewClient(baseURL string, sessions storage.SessionStorage) *Client {
	return &Client{
		baseURL:  baseURL,
		sessions: sessions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register регистрирует нового пользователя и сохраняет сессию
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.UserPayload, error) {
	var resp api.UserResponse
	if err := c.doAuth(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return resp.User, nil
}

// Login выполняет аутентификацию и сохраняет сессию
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.UserPayload, error) {
	var resp api.UserResponse
	if err := c.doAuth(ctx, "/api/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return resp.User, nil
}

// Logout сообщает серверу о выходе и удаляет локальную сессию
func (c *Client) Logout(ctx context.Context) error {
	// Ошибка сервера не мешает удалить локальную сессию
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me возвращает текущего пользователя; nil без ошибки, когда сессии нет
func (c *Client) Me(ctx context.Context) (*api.UserPayload, error) {
	var resp api.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return resp.User, nil
}

// ListTasks возвращает страницу задач
func (c *Client) ListTasks(ctx context.Context, query url.Values) (*api.TaskListResponse, error) {
	path := "/api/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp api.TaskListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list tasks request failed: %w", err)
	}
	return &resp, nil
}

// CreateTask создает новую задачу
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.TaskResponse, error) {
	var resp api.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return nil, fmt.Errorf("create task request failed: %w", err)
	}
	return &resp, nil
}

// GetTask возвращает задачу с историей изменений
func (c *Client) GetTask(ctx context.Context, id string) (*api.TaskResponse, error) {
	var resp api.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("get task request failed: %w", err)
	}
	return &resp, nil
}

// UpdateTask обновляет задачу
func (c *Client) UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*api.UpdateTaskResponse, error) {
	var resp api.UpdateTaskResponse
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, req, &resp); err != nil {
		return nil, fmt.Errorf("update task request failed: %w", err)
	}
	return &resp, nil
}

// DeleteTask удаляет задачу
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete task request failed: %w", err)
	}
	return nil
}

// ListAudit возвращает страницу audit log (только для админа)
func (c *Client) ListAudit(ctx context.Context, query url.Values) (*api.AuditListResponse, error) {
	path := "/api/audit"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp api.AuditListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list audit request failed: %w", err)
	}
	return &resp, nil
}

// doAuth выполняет login/register: без retry, с захватом cookies
func (c *Client) doAuth(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	return c.handleResponse(resp, result)
}

// do выполняет запрос; на 401 обновляет access токен и повторяет один раз
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()

		if err := c.refreshAccessToken(ctx); err != nil {
			return ErrSessionExpired
		}

		// Ровно один повтор с новым токеном
		resp, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			_ = resp.Body.Close()
			return ErrSessionExpired
		}
	}

	return c.handleResponse(resp, result)
}

// send выполняет один HTTP запрос с access cookie из сессии
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sess, err := c.sessions.GetSession(ctx); err == nil && sess.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: session.AccessCookieName, Value: sess.AccessToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.captureCookies(ctx, resp)

	return resp, nil
}

// handleResponse читает тело, превращает не-2xx в ошибку и декодирует результат
func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// captureCookies сохраняет выданные сервером токены в локальную сессию
func (c *Client) captureCookies(ctx context.Context, resp *http.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}

	sess, err := c.sessions.GetSession(ctx)
	if err != nil {
		sess = &storage.SessionData{}
	}

	updated := false
	for _, cookie := range cookies {
		switch cookie.Name {
		case session.AccessCookieName:
			if cookie.MaxAge < 0 {
				continue // очистка cookie при logout
			}
			sess.AccessToken = cookie.Value
			updated = true
		case session.RefreshCookieName:
			if cookie.MaxAge < 0 {
				continue
			}
			sess.RefreshToken = cookie.Value
			sess.RefreshExpiresAt = time.Now().Add(time.Duration(cookie.MaxAge) * time.Second).Unix()
			updated = true
		}
	}

	if updated {
		_ = c.sessions.SaveSession(ctx, sess)
	}
}

// refreshAccessToken обновляет access токен, коалесцируя параллельные вызовы:
// одновременно выполняется не более одного refresh запроса
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		// Refresh уже идет: ждем его результата
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.doRefresh(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}

	return err
}

// doRefresh выполняет собственно POST /api/auth/refresh
func (c *Client) doRefresh(ctx context.Context) error {
	sess, err := c.sessions.GetSession(ctx)
	if err != nil || sess.RefreshToken == "" {
		return ErrSessionExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: session.RefreshCookieName, Value: sess.RefreshToken})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return ErrSessionExpired
	}

	c.captureCookies(ctx, resp)

	return nil
}
