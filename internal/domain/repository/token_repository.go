package repository

import (
	"context"
	"time"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// TokenRepository persists issued tokens
type TokenRepository interface {
	// FindByID returns (nil, nil) when the token does not exist
	FindByID(ctx context.Context, tokenID string) (*entity.Token, error)

	// FindActiveByUser lists tokens of userID still in the active status
	FindActiveByUser(ctx context.Context, userID string) ([]*entity.Token, error)

	// Save inserts or updates the token
	Save(ctx context.Context, token *entity.Token) error

	// Transition writes the revocation fields of token only while the stored
	// status is still from. It reports false when another caller got there first.
	Transition(ctx context.Context, token *entity.Token, from entity.TokenStatus) (bool, error)

	// DeleteExpired removes token rows that expired before the cutoff
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
