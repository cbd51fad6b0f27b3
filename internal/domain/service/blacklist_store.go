package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
)

const defaultDurableTimeout = 200 * time.Millisecond

// BlacklistStats is a point-in-time view of the fast tier
type BlacklistStats struct {
	TotalEntries         int        `json:"total_entries"`
	EstimatedMemoryBytes int64      `json:"estimated_memory_bytes"`
	LastSwept            *time.Time `json:"last_swept,omitempty"`
	FastTier             string     `json:"fast_tier"`
	DurableConfigured    bool       `json:"durable_configured"`
}

// BlacklistStoreOptions configures a BlacklistStore
type BlacklistStoreOptions struct {
	FastTierName   string
	DurableTimeout time.Duration
	Now            func() time.Time
	Logger         *zap.Logger
}

// BlacklistStore composes a fast tier with an optional durable tier.
// Reads try the fast tier, fall back to the durable tier and populate the
// fast tier on a hit. Writes go to the durable tier first.
type BlacklistStore struct {
	fast           repository.BlacklistTier
	durable        repository.BlacklistTier
	fastTierName   string
	durableTimeout time.Duration
	now            func() time.Time
	logger         *zap.Logger

	group     singleflight.Group
	lastSwept atomic.Int64
	// fastCount caches Count() for tiers that cannot report their size locally
	fastCount atomic.Int64
}

// NewBlacklistStore builds a store. durable may be nil.
func NewBlacklistStore(fast, durable repository.BlacklistTier, opts BlacklistStoreOptions) *BlacklistStore {
	if opts.DurableTimeout <= 0 {
		opts.DurableTimeout = defaultDurableTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FastTierName == "" {
		opts.FastTierName = "memory"
	}

	return &BlacklistStore{
		fast:           fast,
		durable:        durable,
		fastTierName:   opts.FastTierName,
		durableTimeout: opts.DurableTimeout,
		now:            opts.Now,
		logger:         opts.Logger,
	}
}

// IsBlacklisted reports whether tokenID is revoked and not yet expired.
// Unknown ids yield false with no error.
func (s *BlacklistStore) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	entry, err := s.Lookup(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// Lookup returns the live entry for tokenID or nil
func (s *BlacklistStore) Lookup(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	now := s.now()

	entry, fastErr := s.fast.Get(ctx, tokenID)
	if fastErr == nil && entry != nil && !entry.IsExpired(now) {
		return entry, nil
	}

	if s.durable == nil {
		if fastErr != nil {
			return nil, fmt.Errorf("fast tier lookup: %w", fastErr)
		}
		return nil, nil
	}

	if fastErr != nil {
		s.logger.Debug("Fast tier lookup failed, falling back to durable tier",
			zap.String("token_id", tokenID),
			zap.Error(fastErr),
		)
	}

	entry, err := s.lookupDurable(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	if fastErr == nil {
		if err := s.fast.Set(ctx, entry); err != nil {
			s.logger.Warn("Failed to populate fast tier",
				zap.String("token_id", tokenID),
				zap.Error(err),
			)
		}
	}

	return entry, nil
}

// LookupDurable consults the source of truth only. It is the strict path for
// refresh tokens. Without a durable tier it reads the fast tier.
func (s *BlacklistStore) LookupDurable(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	if s.durable == nil {
		entry, err := s.fast.Get(ctx, tokenID)
		if err != nil {
			return nil, fmt.Errorf("fast tier lookup: %w", err)
		}
		if entry != nil && entry.IsExpired(s.now()) {
			return nil, nil
		}
		return entry, nil
	}
	return s.lookupDurable(ctx, tokenID)
}

// IsBlacklistedDurable is the boolean form of LookupDurable
func (s *BlacklistStore) IsBlacklistedDurable(ctx context.Context, tokenID string) (bool, error) {
	entry, err := s.LookupDurable(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// lookupDurable collapses concurrent misses for the same id into one query
// bounded by durableTimeout. Each caller still honours its own ctx.
func (s *BlacklistStore) lookupDurable(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	ch := s.group.DoChan(tokenID, func() (interface{}, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.durableTimeout)
		defer cancel()

		entry, err := s.durable.Get(qctx, tokenID)
		if err != nil {
			return nil, err
		}
		if entry == nil || entry.IsExpired(s.now()) {
			return (*entity.BlacklistEntry)(nil), nil
		}
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("durable tier lookup: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("durable tier lookup: %w", res.Err)
		}
		entry, _ := res.Val.(*entity.BlacklistEntry)
		return entry, nil
	}
}

// Add blacklists tokenID until expiresAt. Re-adding overwrites the expiry.
// An already expired entry is not stored.
func (s *BlacklistStore) Add(ctx context.Context, tokenID string, revokedAt, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}

	entry := entity.NewBlacklistEntry(tokenID, revokedAt, expiresAt)

	if s.durable != nil {
		if err := s.durable.Set(ctx, entry); err != nil {
			return fmt.Errorf("durable tier write: %w", err)
		}
	}

	if err := s.fast.Set(ctx, entry); err != nil {
		if s.durable == nil {
			return fmt.Errorf("fast tier write: %w", err)
		}
		// the durable tier answers subsequent misses
		s.logger.Warn("Fast tier write failed after durable write",
			zap.String("token_id", tokenID),
			zap.Error(err),
		)
	}

	return nil
}

// Store writes an entry into the fast tier only. Used when another
// instance has already persisted the revocation.
func (s *BlacklistStore) Store(ctx context.Context, entry *entity.BlacklistEntry) error {
	if entry.IsExpired(s.now()) {
		return nil
	}
	return s.fast.Set(ctx, entry)
}

// Remove deletes tokenID from both tiers
func (s *BlacklistStore) Remove(ctx context.Context, tokenID string) error {
	var errs []error
	if s.durable != nil {
		if err := s.durable.Remove(ctx, tokenID); err != nil {
			errs = append(errs, fmt.Errorf("durable tier remove: %w", err))
		}
	}
	if err := s.fast.Remove(ctx, tokenID); err != nil {
		errs = append(errs, fmt.Errorf("fast tier remove: %w", err))
	}
	return errors.Join(errs...)
}

// RemoveExpired sweeps both tiers. The count is the durable tier's when one
// is configured, otherwise the fast tier's.
func (s *BlacklistStore) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	var errs []error

	fastRemoved, err := s.fast.RemoveExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("fast tier sweep: %w", err))
	}

	removed := fastRemoved
	if s.durable != nil {
		durableRemoved, err := s.durable.RemoveExpired(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("durable tier sweep: %w", err))
		}
		removed = durableRemoved
	}

	s.lastSwept.Store(s.now().UnixNano())

	return removed, errors.Join(errs...)
}

// Stats never performs I/O
func (s *BlacklistStore) Stats() BlacklistStats {
	stats := BlacklistStats{
		FastTier:          s.fastTierName,
		DurableConfigured: s.durable != nil,
	}

	if local, ok := s.fast.(repository.BlacklistTierStats); ok {
		stats.TotalEntries = local.Len()
		stats.EstimatedMemoryBytes = local.EstimatedBytes()
	} else {
		stats.TotalEntries = int(s.fastCount.Load())
	}

	if swept := s.lastSwept.Load(); swept != 0 {
		t := time.Unix(0, swept).UTC()
		stats.LastSwept = &t
	}

	return stats
}

// RefreshCount updates the cached size of a remote fast tier
func (s *BlacklistStore) RefreshCount(ctx context.Context) error {
	if _, ok := s.fast.(repository.BlacklistTierStats); ok {
		return nil
	}
	n, err := s.fast.Count(ctx)
	if err != nil {
		return err
	}
	s.fastCount.Store(int64(n))
	return nil
}

// Ping checks every remote tier
func (s *BlacklistStore) Ping(ctx context.Context) error {
	var errs []error
	if hc, ok := s.durable.(repository.HealthChecker); ok {
		if err := hc.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("durable tier: %w", err))
		}
	}
	if hc, ok := s.fast.(repository.HealthChecker); ok {
		if err := hc.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("fast tier: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *BlacklistStore) DurableConfigured() bool {
	return s.durable != nil
}
