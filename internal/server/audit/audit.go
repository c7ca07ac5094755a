package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/server/storage"
)

// Recorder пишет activity и audit записи
// Запись fire-and-forget: ошибка записи логируется и проглатывается,
// аудит никогда не ломает операцию, которую описывает
type Recorder struct {
	logger     *slog.Logger
	activities storage.ActivityStorage
	audits     storage.AuditStorage
}

// NewRecorder создает recorder поверх хранилищ логов
func NewRecorder(logger *slog.Logger, activities storage.ActivityStorage, audits storage.AuditStorage) *Recorder {
	return &Recorder{
		logger:     logger,
		activities: activities,
		audits:     audits,
	}
}

// Activity добавляет запись в историю изменений задачи
// details сериализуется в JSON, если не nil
// Вызывается ПОСЛЕ основной записи: изменение задачи уже применено,
// потеря записи при сбое процесса возможна и задокументирована
func (r *Recorder) Activity(ctx context.Context, taskID, actorID, action string, details any) {
	entry := &models.ActivityLog{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    actorID,
		Action:    action,
		Details:   marshalDetails(r.logger, details),
		CreatedAt: time.Now(),
	}

	if err := r.activities.AppendActivity(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to append activity log",
			slog.String("task_id", taskID),
			slog.String("action", action),
			slog.Any("error", err))
	}
}

// Audit добавляет запись в системный audit log
func (r *Recorder) Audit(ctx context.Context, action, resource, actorID, ip, userAgent string, details any) {
	entry := &models.AuditLog{
		ID:        uuid.New().String(),
		Action:    action,
		Resource:  resource,
		UserID:    actorID,
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   marshalDetails(r.logger, details),
		CreatedAt: time.Now(),
	}

	if err := r.audits.AppendAudit(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to append audit log",
			slog.String("action", action),
			slog.String("resource", resource),
			slog.Any("error", err))
	}
}

// marshalDetails сериализует details в JSON; ошибка сериализации
// не фатальна - details просто теряются
func marshalDetails(logger *slog.Logger, details any) string {
	if details == nil {
		return ""
	}

	data, err := json.Marshal(details)
	if err != nil {
		logger.Error("failed to marshal log details", slog.Any("error", err))
		return ""
	}

	return string(data)
}
