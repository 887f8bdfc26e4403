package repository

import (
	"context"

	"clinic-scheduling-api/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	// FindAll returns one page of matching entries, newest first, and the total match count.
	FindAll(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.AuditLog, error)
}
