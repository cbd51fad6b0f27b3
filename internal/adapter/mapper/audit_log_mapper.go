package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

func AuditLogToModel(log *entity.AuditLog) (*model.AuditLogModel, error) {
	content, err := log.ContentJSON()
	if err != nil {
		return nil, err
	}

	return &model.AuditLogModel{
		ID:        log.ID,
		UserID:    log.UserID,
		Type:      string(log.Type),
		Content:   datatypes.JSON(content),
		CreatedAt: log.CreatedAt,
	}, nil
}

func AuditLogFromModel(m *model.AuditLogModel) *entity.AuditLog {
	var content map[string]interface{}
	if len(m.Content) > 0 {
		_ = json.Unmarshal(m.Content, &content)
	}

	return &entity.AuditLog{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entity.AuditLogType(m.Type),
		Content:   content,
		CreatedAt: m.CreatedAt,
	}
}

func AuditLogsFromModels(models []model.AuditLogModel) []*entity.AuditLog {
	logs := make([]*entity.AuditLog, len(models))
	for i := range models {
		logs[i] = AuditLogFromModel(&models[i])
	}
	return logs
}
