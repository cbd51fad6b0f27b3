package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

type RevocationUseCase struct {
	logger          *zap.Logger
	tokenRepository repository.TokenRepository
	blacklist       interfaces.BlacklistUseCase
	publisher       repository.RevocationPublisher
	now             func() time.Time
}

func NewRevocationUseCase(
	logger *zap.Logger,
	tokenRepo repository.TokenRepository,
	blacklist interfaces.BlacklistUseCase,
	publisher repository.RevocationPublisher,
	now func() time.Time,
) interfaces.RevocationUseCase {
	if now == nil {
		now = time.Now
	}
	return &RevocationUseCase{
		logger:          logger,
		tokenRepository: tokenRepo,
		blacklist:       blacklist,
		publisher:       publisher,
		now:             now,
	}
}

// RevokeToken loads the token, claims the revoked status with a conditional
// update, blacklists it synchronously and only then publishes the event.
// Concurrent callers lose the claim and get ErrTokenAlreadyRevoked. When the
// blacklist write fails the claim is released so the call can be retried.
func (uc *RevocationUseCase) RevokeToken(ctx context.Context, tokenID, reason string) (*entity.RevocationEvent, error) {
	token, err := uc.tokenRepository.FindByID(ctx, tokenID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load token")
	}
	if token == nil {
		return nil, domainErrors.ErrTokenNotFound
	}

	return uc.revoke(ctx, token, reason)
}

func (uc *RevocationUseCase) revoke(ctx context.Context, token *entity.Token, reason string) (*entity.RevocationEvent, error) {
	previous := *token

	event, err := token.Revoke(reason, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	claimed, err := uc.tokenRepository.Transition(ctx, token, entity.TokenStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to persist revoked token")
	}
	if !claimed {
		return nil, domainErrors.ErrTokenAlreadyRevoked
	}

	if err := uc.blacklist.BlacklistToken(ctx, token.TokenID, event.OccurredAt, token.ExpiresAt); err != nil {
		uc.release(ctx, &previous)
		return nil, err
	}

	if uc.publisher != nil {
		uc.publisher.Publish(ctx, *event)
	}

	uc.logger.Info("Token revoked",
		zap.String("token_id", token.TokenID),
		zap.String("user_id", token.UserID),
		zap.String("token_type", string(token.TokenType)),
		zap.String("reason", reason),
	)

	return event, nil
}

// release puts back the active row after an unconfirmed blacklist write.
// It runs even when ctx is already cancelled.
func (uc *RevocationUseCase) release(ctx context.Context, previous *entity.Token) {
	ok, err := uc.tokenRepository.Transition(context.WithoutCancel(ctx), previous, entity.TokenStatusRevoked)
	if err != nil || !ok {
		uc.logger.Error("Failed to release revocation claim",
			zap.String("token_id", previous.TokenID),
			zap.Bool("released", ok),
			zap.Error(err),
		)
	}
}

// RevokeAllForUser stops at the first revocation that cannot be confirmed
func (uc *RevocationUseCase) RevokeAllForUser(ctx context.Context, userID, reason string) (int, error) {
	tokens, err := uc.tokenRepository.FindActiveByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to list user tokens")
	}

	revoked := 0
	for _, token := range tokens {
		if _, err := uc.revoke(ctx, token, reason); err != nil {
			if errors.Is(err, domainErrors.ErrTokenAlreadyRevoked) {
				continue
			}
			return revoked, err
		}
		revoked++
	}

	return revoked, nil
}
