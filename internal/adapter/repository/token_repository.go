package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dariemcarlosdev/secure-clean-api/internal/adapter/mapper"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

type TokenRepositoryImpl struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) FindByID(ctx context.Context, tokenID string) (*entity.Token, error) {
	var tokenModel model.TokenModel

	if err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&tokenModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	return mapper.TokenFromModel(&tokenModel), nil
}

// FindActiveByUser uses the (user_id, status) index
func (r *TokenRepositoryImpl) FindActiveByUser(ctx context.Context, userID string) ([]*entity.Token, error) {
	var tokenModels []model.TokenModel

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(entity.TokenStatusActive)).
		Order("issued_at").
		Find(&tokenModels).Error
	if err != nil {
		return nil, fmt.Errorf("find active tokens: %w", err)
	}

	return mapper.TokensFromModels(tokenModels), nil
}

func (r *TokenRepositoryImpl) Save(ctx context.Context, token *entity.Token) error {
	if err := r.db.WithContext(ctx).Save(mapper.TokenToModel(token)).Error; err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Transition is a compare-and-set on the status column
func (r *TokenRepositoryImpl) Transition(ctx context.Context, token *entity.Token, from entity.TokenStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("token_id = ? AND status = ?", token.TokenID, string(from)).
		Updates(map[string]interface{}{
			"status":            string(token.Status),
			"revoked_at":        token.RevokedAt,
			"revocation_reason": token.RevocationReason,
		})
	if result.Error != nil {
		return false, fmt.Errorf("transition token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *TokenRepositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before.UTC()).Delete(&model.TokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
