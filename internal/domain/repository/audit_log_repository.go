package repository

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// AuditLogRepository stores audit records
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error

	// ListByUserID returns a page of the user's logs and the total count
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error)

	ListByType(ctx context.Context, logType entity.AuditLogType, page, limit int) ([]*entity.AuditLog, int64, error)
}
