package usecase

import (
	"time"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/config"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
)

// UseCases holds every use case of the service
type UseCases struct {
	Auth       interfaces.AuthUseCase
	Token      interfaces.TokenUseCase
	Blacklist  interfaces.BlacklistUseCase
	Revocation interfaces.RevocationUseCase
	AuditLog   interfaces.AuditLogUseCase
	Proxy      interfaces.ProxyUseCase
}

// Dependencies are the collaborators built outside the repository layer
type Dependencies struct {
	Store     *service.BlacklistStore
	Results   interfaces.CheckResultCache
	Publisher repository.RevocationPublisher
	Now       func() time.Time
}

// SetupUseCases builds the use cases leaves first
func SetupUseCases(
	logger *zap.Logger,
	cfg *config.Config,
	repositories *repository.Repositories,
	deps Dependencies,
) *UseCases {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	auditLogUC := NewAuditLogUseCase(logger, repositories.AuditLog, now)

	tokenUC := NewTokenUseCase(
		logger,
		TokenConfig{
			Issuer:             cfg.JWT.Issuer,
			Secret:             cfg.JWT.Secret,
			AccessTokenExpiry:  cfg.JWT.AccessTokenExpiry,
			RefreshTokenExpiry: cfg.JWT.RefreshTokenExpiry,
			ClockSkew:          cfg.Blacklist.ClockSkew,
		},
		repositories.Token,
		now,
	)

	blacklistUC := NewBlacklistUseCase(
		logger,
		BlacklistConfig{
			ClockSkew:        cfg.Blacklist.ClockSkew,
			FailClosed:       cfg.Blacklist.FailClosed,
			InsertRetries:    cfg.Blacklist.InsertRetries,
			InsertMaxElapsed: cfg.Blacklist.InsertMaxElapsed,
		},
		deps.Store,
		tokenUC,
		deps.Results,
		now,
	)

	revocationUC := NewRevocationUseCase(logger, repositories.Token, blacklistUC, deps.Publisher, now)

	authUC := NewAuthUseCase(
		logger,
		repositories.User,
		tokenUC,
		blacklistUC,
		revocationUC,
		auditLogUC,
		now,
	)

	return &UseCases{
		Auth:       authUC,
		Token:      tokenUC,
		Blacklist:  blacklistUC,
		Revocation: revocationUC,
		AuditLog:   auditLogUC,
		Proxy:      NewProxyUseCase(logger, repositories.External),
	}
}
