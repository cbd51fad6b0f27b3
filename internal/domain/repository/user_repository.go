package repository

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

type UserRepository interface {
	// FindByUsername returns (nil, nil) when no user matches
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
}
