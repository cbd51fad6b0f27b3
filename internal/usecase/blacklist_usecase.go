package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// BlacklistConfig tunes the check and insert protocol
type BlacklistConfig struct {
	ClockSkew time.Duration
	// FailClosed rejects tokens when the store cannot answer. Off by default.
	FailClosed       bool
	InsertRetries    int
	InsertMaxElapsed time.Duration
	InsertInterval   time.Duration
}

type BlacklistUseCase struct {
	logger  *zap.Logger
	config  BlacklistConfig
	store   *service.BlacklistStore
	tokens  interfaces.TokenUseCase
	results interfaces.CheckResultCache
	now     func() time.Time
}

// NewBlacklistUseCase builds the protocol. results may be nil to disable the decision cache.
func NewBlacklistUseCase(
	logger *zap.Logger,
	config BlacklistConfig,
	store *service.BlacklistStore,
	tokens interfaces.TokenUseCase,
	results interfaces.CheckResultCache,
	now func() time.Time,
) *BlacklistUseCase {
	if config.InsertRetries <= 0 {
		config.InsertRetries = constants.DefaultInsertRetries
	}
	if config.InsertMaxElapsed <= 0 {
		config.InsertMaxElapsed = constants.DefaultInsertMaxElapsed
	}
	if config.InsertInterval <= 0 {
		config.InsertInterval = constants.DefaultInsertInterval
	}
	if now == nil {
		now = time.Now
	}

	return &BlacklistUseCase{
		logger:  logger,
		config:  config,
		store:   store,
		tokens:  tokens,
		results: results,
		now:     now,
	}
}

// CheckBlacklist decides whether rawToken has been revoked. Parsing problems
// produce an invalid result. Store failures produce a valid result flagged
// FailedOpen unless the protocol is configured to fail closed.
func (uc *BlacklistUseCase) CheckBlacklist(ctx context.Context, rawToken string, opts dto.CheckOptions) dto.TokenStatusResult {
	now := uc.now().UTC()

	parsed := uc.tokens.ExtractClaims(rawToken)
	if !parsed.OK() {
		return dto.InvalidResult(constants.ReasonMalformed, now)
	}
	if parsed.TokenID == "" {
		return dto.InvalidResult(constants.ReasonMissingJTI, now)
	}
	if parsed.ExpiresAt.IsZero() {
		return dto.InvalidResult(constants.ReasonMissingExpiry, now)
	}

	deadline := parsed.ExpiresAt.Add(uc.config.ClockSkew)
	if now.After(deadline) {
		return dto.InvalidResult(constants.ReasonExpired, now)
	}

	// refresh tokens always go to the source of truth
	strict := parsed.TokenType == entity.TokenTypeRefresh
	useCache := uc.results != nil && !opts.BypassCache && !strict

	var generation uint64
	if useCache {
		if cached, ok := uc.results.Get(parsed.TokenID); ok {
			cached.CheckedAt = now
			cached.FromCache = true
			return cached
		}
		generation = uc.results.Generation()
	}

	var (
		entry *entity.BlacklistEntry
		err   error
	)
	if strict {
		entry, err = uc.store.LookupDurable(ctx, parsed.TokenID)
	} else {
		entry, err = uc.store.Lookup(ctx, parsed.TokenID)
	}

	if err != nil {
		uc.logger.Warn("Unable to verify blacklist status",
			zap.String("token_id", parsed.TokenID),
			zap.String("token_type", string(parsed.TokenType)),
			zap.Bool("fail_closed", uc.config.FailClosed),
			zap.Error(err),
		)
		if uc.config.FailClosed {
			return dto.InvalidResult(constants.ReasonBlacklistUnavailable, now)
		}
		result := dto.ValidResult(parsed.TokenID, parsed.ExpiresAt, now)
		result.FailedOpen = true
		return result
	}

	var result dto.TokenStatusResult
	if entry != nil {
		revokedAt := entry.RevokedAt.UTC()
		result = dto.BlacklistedResult(parsed.TokenID, &revokedAt, parsed.ExpiresAt, now)
	} else {
		result = dto.ValidResult(parsed.TokenID, parsed.ExpiresAt, now)
	}

	// a revocation that landed during the lookup has already invalidated this id
	if useCache {
		uc.results.SetIfUnchanged(parsed.TokenID, result, deadline.Sub(now), generation)
	}

	return result
}

// BlacklistToken writes the revocation with retries. The entry outlives the
// token by the clock skew so the grace window cannot re-admit it.
func (uc *BlacklistUseCase) BlacklistToken(ctx context.Context, tokenID string, revokedAt, expiresAt time.Time) error {
	until := expiresAt.Add(uc.config.ClockSkew)
	if !until.After(uc.now()) {
		uc.logger.Debug("Token already expired, nothing to blacklist", zap.String("token_id", tokenID))
		uc.InvalidateCached(tokenID)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = uc.config.InsertInterval
	policy.MaxElapsedTime = uc.config.InsertMaxElapsed

	attempts := 0
	operation := func() error {
		attempts++
		return uc.store.Add(ctx, tokenID, revokedAt, until)
	}
	notify := func(err error, wait time.Duration) {
		uc.logger.Warn("Blacklist insert failed, retrying",
			zap.String("token_id", tokenID),
			zap.Int("attempt", attempts),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(uc.config.InsertRetries-1)), ctx),
		notify,
	)

	// read-your-writes for this instance
	uc.InvalidateCached(tokenID)

	if err != nil {
		uc.logger.Error("Revocation could not be confirmed",
			zap.String("token_id", tokenID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return domainErrors.ErrRevocationNotConfirmed.WithCause(err)
	}

	return nil
}

// ApplyRemoteRevocation invalidates after the write so a concurrent check
// cannot cache the pre-revocation answer.
func (uc *BlacklistUseCase) ApplyRemoteRevocation(ctx context.Context, event entity.RevocationEvent) error {
	entry := entity.NewBlacklistEntry(event.TokenID, event.OccurredAt, event.ExpiresAt.Add(uc.config.ClockSkew))
	err := uc.store.Store(ctx, entry)
	uc.InvalidateCached(event.TokenID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to mirror remote revocation")
	}
	return nil
}

func (uc *BlacklistUseCase) InvalidateCached(tokenID string) {
	if uc.results != nil {
		uc.results.Delete(tokenID)
	}
}

func (uc *BlacklistUseCase) GetBlacklistStats() service.BlacklistStats {
	return uc.store.Stats()
}

func (uc *BlacklistUseCase) SweepExpired(ctx context.Context) (int, error) {
	return uc.store.RemoveExpired(ctx, uc.now())
}
