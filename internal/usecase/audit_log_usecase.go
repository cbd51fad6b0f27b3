package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
)

type AuditLogUseCase struct {
	logger          *zap.Logger
	auditRepository repository.AuditLogRepository
	now             func() time.Time
}

func NewAuditLogUseCase(
	logger *zap.Logger,
	auditRepo repository.AuditLogRepository,
	now func() time.Time,
) interfaces.AuditLogUseCase {
	if now == nil {
		now = time.Now
	}
	return &AuditLogUseCase{
		logger:          logger,
		auditRepository: auditRepo,
		now:             now,
	}
}

func (uc *AuditLogUseCase) AddLog(ctx context.Context, logType entity.AuditLogType, content map[string]interface{}, userID *string) error {
	auditLog := entity.NewAuditLog(userID, logType, content, uc.now().UTC())

	if err := uc.auditRepository.Create(ctx, auditLog); err != nil {
		uc.logger.Error("Failed to store audit log",
			zap.String("type", string(logType)),
			zap.Any("content", content),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (uc *AuditLogUseCase) GetUserLogs(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	logs, total, err := uc.auditRepository.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		uc.logger.Error("Failed to list user audit logs",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	return logs, total, nil
}

// AuditRevocationSubscriber writes a TOKEN_REVOCATION audit record per event
type AuditRevocationSubscriber struct {
	audit interfaces.AuditLogUseCase
}

func NewAuditRevocationSubscriber(audit interfaces.AuditLogUseCase) *AuditRevocationSubscriber {
	return &AuditRevocationSubscriber{audit: audit}
}

func (s *AuditRevocationSubscriber) Name() string {
	return "audit_log"
}

func (s *AuditRevocationSubscriber) Handle(ctx context.Context, event entity.RevocationEvent) error {
	userID := event.UserID
	return s.audit.AddLog(ctx, entity.AuditLogTypeTokenRevocation, event.AuditContent(), &userID)
}
