package interfaces

import (
	"context"
	"time"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
)

// BlacklistUseCase is the request-path check and the revocation write path
type BlacklistUseCase interface {
	CheckBlacklist(ctx context.Context, rawToken string, opts dto.CheckOptions) dto.TokenStatusResult

	// BlacklistToken retries and returns ErrRevocationNotConfirmed when the write never lands
	BlacklistToken(ctx context.Context, tokenID string, revokedAt, expiresAt time.Time) error

	// ApplyRemoteRevocation mirrors a revocation published by another instance
	ApplyRemoteRevocation(ctx context.Context, event entity.RevocationEvent) error

	InvalidateCached(tokenID string)

	GetBlacklistStats() service.BlacklistStats

	SweepExpired(ctx context.Context) (int, error)
}

// CheckResultCache remembers recent check results per token id
type CheckResultCache interface {
	Get(tokenID string) (dto.TokenStatusResult, bool)
	Generation() uint64
	SetIfUnchanged(tokenID string, result dto.TokenStatusResult, remaining time.Duration, generation uint64) bool
	Delete(tokenID string)
}
