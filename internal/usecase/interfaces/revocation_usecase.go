package interfaces

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// RevocationUseCase revokes tracked tokens
type RevocationUseCase interface {
	// RevokeToken fails with ErrTokenNotFound or ErrTokenAlreadyRevoked without raising an event
	RevokeToken(ctx context.Context, tokenID, reason string) (*entity.RevocationEvent, error)

	// RevokeAllForUser revokes every active token of the user and returns how many were revoked
	RevokeAllForUser(ctx context.Context, userID, reason string) (int, error)
}
