package repository

import (
	"context"
	"time"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// BlacklistTier is one storage tier of the revoked token set.
// Implementations must be safe for concurrent use.
type BlacklistTier interface {
	// Get returns the live entry for tokenID, or (nil, nil) when absent or expired
	Get(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error)

	// Set inserts or overwrites the entry
	Set(ctx context.Context, entry *entity.BlacklistEntry) error

	Remove(ctx context.Context, tokenID string) error

	// RemoveExpired deletes entries with ExpiresAt <= now and returns how many were removed
	RemoveExpired(ctx context.Context, now time.Time) (int, error)

	Count(ctx context.Context) (int, error)
}

// BlacklistTierStats is implemented by tiers that can report their size without I/O
type BlacklistTierStats interface {
	Len() int
	EstimatedBytes() int64
}

// HealthChecker is implemented by tiers backed by a remote service
type HealthChecker interface {
	Ping(ctx context.Context) error
}
