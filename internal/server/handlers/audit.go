package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskforge/taskforge/internal/server/storage"
	"github.com/taskforge/taskforge/pkg/api"
)

// AuditHandler обрабатывает чтение системного audit log
// Маршрут закрыт RBAC middleware: сюда доходят только админы
type AuditHandler struct {
	logger       *slog.Logger
	auditStorage storage.AuditStorage
}

// NewAuditHandler создает новый handler для audit log
func NewAuditHandler(logger *slog.Logger, auditStorage storage.AuditStorage) *AuditHandler {
	return &AuditHandler{
		logger:       logger,
		auditStorage: auditStorage,
	}
}

// List обрабатывает GET /api/audit
// Постраничная выдача, новые записи первыми
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()

	page := DefaultPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}

	limit := DefaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, total, err := h.auditStorage.ListAudit(ctx, page, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit log", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := make([]api.AuditEntry, 0, len(entries))
	for _, e := range entries {
		data = append(data, api.AuditEntry{
			ID:        e.ID,
			Action:    e.Action,
			Resource:  e.Resource,
			UserID:    e.UserID,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}

	totalPages := (total + limit - 1) / limit

	sendJSON(h.logger, w, api.AuditListResponse{
		Data: data,
		Meta: api.Meta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, http.StatusOK)
}
