package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/crypto"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/audit"
	"github.com/taskforge/taskforge/internal/server/storage"
	"github.com/taskforge/taskforge/internal/validation"
	"github.com/taskforge/taskforge/pkg/api"
)

// Параметры списка задач по умолчанию
const (
	DefaultPage  = 1
	DefaultLimit = 10
	// ActivityLimit - сколько последних записей истории отдается с задачей
	ActivityLimit = 20
)

// TasksHandler обрабатывает CRUD запросы задач
type TasksHandler struct {
	logger          *slog.Logger
	taskStorage     storage.TaskStorage
	activityStorage storage.ActivityStorage
	cipher          *crypto.FieldCipher
	recorder        *audit.Recorder
}

// NewTasksHandler создает новый handler для задач
func NewTasksHandler(
	logger *slog.Logger,
	taskStorage storage.TaskStorage,
	activityStorage storage.ActivityStorage,
	cipher *crypto.FieldCipher,
	recorder *audit.Recorder,
) *TasksHandler {
	return &TasksHandler{
		logger:          logger,
		taskStorage:     taskStorage,
		activityStorage: activityStorage,
		cipher:          cipher,
		recorder:        recorder,
	}
}

// List обрабатывает GET /api/tasks
// Пагинация, поиск по title, фильтры по статусу и приоритету
// Не-админ видит только свои задачи
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := parseTaskFilter(r)
	if !id.Admin() {
		filter.UserID = id.UserID
	}

	tasks, total, err := h.taskStorage.ListTasks(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := make([]api.TaskPayload, 0, len(tasks))
	for _, t := range tasks {
		data = append(data, h.taskPayload(ctx, t))
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit

	sendJSON(h.logger, w, api.TaskListResponse{
		Data: data,
		Meta: api.Meta{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	}, http.StatusOK)
}

// Create обрабатывает POST /api/tasks
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create task request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTitle(req.Title); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		sendError(h.logger, w, "Invalid status value", http.StatusBadRequest)
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		sendError(h.logger, w, "Invalid priority value", http.StatusBadRequest)
		return
	}

	// Description хранится зашифрованной; пустая проходит насквозь
	encrypted, err := h.cipher.Encrypt(req.Description)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encrypt description", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: encrypted,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		UserID:      id.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.taskStorage.CreateTask(ctx, task); err != nil {
		h.logger.ErrorContext(ctx, "failed to create task", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.recorder.Activity(ctx, task.ID, id.UserID, models.ActionTaskCreated,
		map[string]string{"title": task.Title})

	h.logger.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", id.UserID))

	sendJSON(h.logger, w, api.TaskResponse{Data: h.taskPayload(ctx, task)}, http.StatusCreated)
}

// Get обрабатывает GET /api/tasks/{id}
// Вместе с задачей отдается хвост истории изменений (не более 20 записей)
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	task, id, ok := h.checkTaskAccess(w, r)
	if !ok {
		return
	}

	entries, err := h.activityStorage.ListTaskActivity(ctx, task.ID, ActivityLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list task activity",
			slog.String("task_id", task.ID), slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	activity := make([]api.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		activity = append(activity, api.ActivityEntry{
			ID:        e.ID,
			Action:    e.Action,
			UserID:    e.UserID,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}

	h.logger.DebugContext(ctx, "task fetched",
		slog.String("task_id", task.ID),
		slog.String("user_id", id.UserID))

	sendJSON(h.logger, w, api.TaskResponse{
		Data:     h.taskPayload(ctx, task),
		Activity: activity,
	}, http.StatusOK)
}

// Update обрабатывает PUT /api/tasks/{id}
// Diff-based обновление: записываются только реально изменившиеся поля
// Смена статуса дает ровно одну STATUS_CHANGED запись {from,to};
// прочие изменения собираются в одну TASK_UPDATED запись
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	task, id, ok := h.checkTaskAccess(w, r)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update task request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var statusChange map[string]string
	changed := map[string]any{}

	if req.Title != nil && *req.Title != task.Title {
		if err := validation.ValidateTitle(*req.Title); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
		changed["title"] = map[string]string{"from": task.Title, "to": *req.Title}
		task.Title = *req.Title
	}

	if req.Description != nil {
		// Сравниваем plaintext: envelope недетерминирован (случайный IV)
		current, err := h.cipher.Decrypt(task.Description)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to decrypt description",
				slog.String("task_id", task.ID), slog.Any("error", err))
			sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if *req.Description != current {
			encrypted, err := h.cipher.Encrypt(*req.Description)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encrypt description", slog.Any("error", err))
				sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
				return
			}
			// Plaintext в лог не попадает
			changed["description"] = "updated"
			task.Description = encrypted
		}
	}

	if req.Status != nil && *req.Status != task.Status {
		if !req.Status.Valid() {
			sendError(h.logger, w, "Invalid status value", http.StatusBadRequest)
			return
		}
		statusChange = map[string]string{
			"from": string(task.Status),
			"to":   string(*req.Status),
		}
		task.Status = *req.Status
	}

	if req.Priority != nil && *req.Priority != task.Priority {
		if !req.Priority.Valid() {
			sendError(h.logger, w, "Invalid priority value", http.StatusBadRequest)
			return
		}
		changed["priority"] = map[string]string{
			"from": string(task.Priority),
			"to":   string(*req.Priority),
		}
		task.Priority = *req.Priority
	}

	// Явный null очищает дату: Set различает null и отсутствие поля
	if req.DueDate.Set && !equalTime(req.DueDate.Time, task.DueDate) {
		changed["dueDate"] = "updated"
		task.DueDate = req.DueDate.Time
	}

	if statusChange == nil && len(changed) == 0 {
		sendJSON(h.logger, w, api.UpdateTaskResponse{
			Message: "No changes",
			Data:    h.taskPayload(ctx, task),
		}, http.StatusOK)
		return
	}

	task.UpdatedAt = time.Now()
	if err := h.taskStorage.UpdateTask(ctx, task); err != nil {
		h.logger.ErrorContext(ctx, "failed to update task",
			slog.String("task_id", task.ID), slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Смена статуса логируется одной записью STATUS_CHANGED,
	// дублирующая TASK_UPDATED в этом случае не пишется
	if statusChange != nil {
		h.recorder.Activity(ctx, task.ID, id.UserID, models.ActionStatusChanged, statusChange)
	} else if len(changed) > 0 {
		h.recorder.Activity(ctx, task.ID, id.UserID, models.ActionTaskUpdated, changed)
	}

	h.logger.InfoContext(ctx, "task updated",
		slog.String("task_id", task.ID),
		slog.String("user_id", id.UserID))

	sendJSON(h.logger, w, api.UpdateTaskResponse{Data: h.taskPayload(ctx, task)}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/tasks/{id}
// Soft delete: строка остается, выставляется deleted_at
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	task, id, ok := h.checkTaskAccess(w, r)
	if !ok {
		return
	}

	if err := h.taskStorage.SoftDeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			sendError(h.logger, w, "Task not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete task",
			slog.String("task_id", task.ID), slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.recorder.Activity(ctx, task.ID, id.UserID, models.ActionTaskDeleted,
		map[string]string{"title": task.Title})

	h.logger.InfoContext(ctx, "task deleted",
		slog.String("task_id", task.ID),
		slog.String("user_id", id.UserID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Task deleted successfully"}, http.StatusOK)
}

// checkTaskAccess загружает задачу и проверяет право доступа вызывающего
// Несуществующая или soft-deleted задача дает 404; чужая задача
// для не-админа дает 403. При false ответ уже отправлен
func (h *TasksHandler) checkTaskAccess(w http.ResponseWriter, r *http.Request) (*models.Task, Identity, bool) {
	ctx := r.Context()

	id, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return nil, Identity{}, false
	}

	taskID := r.PathValue("id")
	if taskID == "" {
		sendError(h.logger, w, "Task ID is required", http.StatusBadRequest)
		return nil, Identity{}, false
	}

	task, err := h.taskStorage.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			sendError(h.logger, w, "Task not found", http.StatusNotFound)
			return nil, Identity{}, false
		}
		h.logger.ErrorContext(ctx, "failed to get task",
			slog.String("task_id", taskID), slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return nil, Identity{}, false
	}

	// Soft-deleted задача неотличима от несуществующей
	if task.Deleted() {
		sendError(h.logger, w, "Task not found", http.StatusNotFound)
		return nil, Identity{}, false
	}

	if task.UserID != id.UserID && !id.Admin() {
		h.logger.WarnContext(ctx, "forbidden task access",
			slog.String("task_id", taskID),
			slog.String("user_id", id.UserID))
		sendError(h.logger, w, "Forbidden", http.StatusForbidden)
		return nil, Identity{}, false
	}

	return task, id, true
}

// taskPayload конвертирует задачу в API представление с расшифрованным описанием
// В fail-open режиме ошибка расшифровки невозможна; в fail-closed режиме
// битое поле логируется и отдается пустым, чтобы не ронять весь список
func (h *TasksHandler) taskPayload(ctx context.Context, t *models.Task) api.TaskPayload {
	description, err := h.cipher.Decrypt(t.Description)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to decrypt description",
			slog.String("task_id", t.ID), slog.Any("error", err))
		description = ""
	}

	return api.TaskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// parseTaskFilter собирает фильтр списка из query параметров
func parseTaskFilter(r *http.Request) storage.TaskFilter {
	q := r.URL.Query()

	page := DefaultPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}

	limit := DefaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}

	sortOrder := storage.SortDesc
	if q.Get("sortOrder") == storage.SortAsc {
		sortOrder = storage.SortAsc
	}

	return storage.TaskFilter{
		Search:    q.Get("search"),
		Status:    models.Status(q.Get("status")),
		Priority:  models.Priority(q.Get("priority")),
		SortBy:    q.Get("sortBy"),
		SortOrder: sortOrder,
		Page:      page,
		Limit:     limit,
	}
}

// equalTime сравнивает опциональные временные метки
func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
