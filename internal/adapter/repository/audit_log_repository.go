package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dariemcarlosdev/secure-clean-api/internal/adapter/mapper"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

type AuditLogRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &AuditLogRepositoryImpl{db: db}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	auditLogModel, err := mapper.AuditLogToModel(log)
	if err != nil {
		return fmt.Errorf("encode audit log: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(auditLogModel).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}

	log.ID = auditLogModel.ID
	return nil
}

func (r *AuditLogRepositoryImpl) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID), page, limit)
}

func (r *AuditLogRepositoryImpl) ListByType(ctx context.Context, logType entity.AuditLogType, page, limit int) ([]*entity.AuditLog, int64, error) {
	return r.list(r.db.WithContext(ctx).Where("type = ?", string(logType)), page, limit)
}

// list runs a count and a page query over the same conditions
func (r *AuditLogRepositoryImpl) list(query *gorm.DB, page, limit int) ([]*entity.AuditLog, int64, error) {
	var (
		auditLogModels []model.AuditLogModel
		total          int64
	)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query = query.Model(&model.AuditLogModel{}).Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	if err := query.Order("created_at DESC, id DESC").Offset((page - 1) * limit).Limit(limit).Find(&auditLogModels).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	return mapper.AuditLogsFromModels(auditLogModels), total, nil
}
