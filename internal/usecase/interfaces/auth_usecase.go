package interfaces

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
)

type AuthUseCase interface {
	Login(ctx context.Context, params dto.LoginParams) (*dto.AuthTokens, error)

	// Logout revokes the access token and, when given, the refresh token
	Logout(ctx context.Context, params dto.LogoutParams) error

	// Refresh rotates a refresh token into a new pair
	Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*dto.AuthTokens, error)
}
