package interfaces

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

type AuditLogUseCase interface {
	AddLog(ctx context.Context, logType entity.AuditLogType, content map[string]interface{}, userID *string) error

	GetUserLogs(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error)
}
