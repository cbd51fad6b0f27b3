package interfaces

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
)

// TokenUseCase issues JWTs and reads their claims
type TokenUseCase interface {
	// IssueToken signs a new token and records it
	IssueToken(ctx context.Context, params dto.IssueParams) (*dto.IssuedToken, error)

	// ExtractClaims reads claims without verifying the signature. It never panics.
	ExtractClaims(raw string) dto.ParseResult

	// ExtractOrFallback returns a random id and a short expiry for unreadable tokens
	ExtractOrFallback(raw string) dto.TokenClaims

	// ValidateToken verifies signature, issuer, expiry and type
	ValidateToken(ctx context.Context, raw string, expected entity.TokenType) (*dto.AuthClaims, error)
}
