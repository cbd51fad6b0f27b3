package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

// AutoMigrate creates or updates every table owned by the service
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.TokenModel{},
		&model.BlacklistModel{},
		&model.AuditLogModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
