package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dariemcarlosdev/secure-clean-api/internal/adapter/mapper"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

// BlacklistRepositoryImpl is the durable blacklist tier backed by token_blacklist
type BlacklistRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBlacklistRepository(db *gorm.DB, now func() time.Time) *BlacklistRepositoryImpl {
	if now == nil {
		now = time.Now
	}
	return &BlacklistRepositoryImpl{db: db, now: now}
}

// Get ignores rows past their expiry
func (r *BlacklistRepositoryImpl) Get(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	var row model.BlacklistModel

	err := r.db.WithContext(ctx).
		Where("token_id = ? AND expires_at > ?", tokenID, r.now().UTC()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blacklist entry: %w", err)
	}

	return mapper.BlacklistEntryFromModel(&row), nil
}

// Set upserts so re-revoking overwrites the expiry
func (r *BlacklistRepositoryImpl) Set(ctx context.Context, entry *entity.BlacklistEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"revoked_at", "expires_at"}),
		}).
		Create(mapper.BlacklistEntryToModel(entry)).Error
	if err != nil {
		return fmt.Errorf("set blacklist entry: %w", err)
	}
	return nil
}

func (r *BlacklistRepositoryImpl) Remove(ctx context.Context, tokenID string) error {
	if err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&model.BlacklistModel{}).Error; err != nil {
		return fmt.Errorf("remove blacklist entry: %w", err)
	}
	return nil
}

func (r *BlacklistRepositoryImpl) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&model.BlacklistModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("remove expired blacklist entries: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// Count reports live entries only
func (r *BlacklistRepositoryImpl) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.BlacklistModel{}).Where("expires_at > ?", r.now().UTC()).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count blacklist entries: %w", err)
	}
	return int(n), nil
}

func (r *BlacklistRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
