// Package mocks provides testify mocks of the use case interfaces for
// transport layer tests.
package mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
)

var (
	_ interfaces.TokenUseCase      = (*TokenUseCase)(nil)
	_ interfaces.BlacklistUseCase  = (*BlacklistUseCase)(nil)
	_ interfaces.RevocationUseCase = (*RevocationUseCase)(nil)
	_ interfaces.AuthUseCase       = (*AuthUseCase)(nil)
	_ interfaces.ProxyUseCase      = (*ProxyUseCase)(nil)
)

type TokenUseCase struct {
	mock.Mock
}

func (m *TokenUseCase) IssueToken(ctx context.Context, params dto.IssueParams) (*dto.IssuedToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssuedToken), args.Error(1)
}

func (m *TokenUseCase) ExtractClaims(raw string) dto.ParseResult {
	return m.Called(raw).Get(0).(dto.ParseResult)
}

func (m *TokenUseCase) ExtractOrFallback(raw string) dto.TokenClaims {
	return m.Called(raw).Get(0).(dto.TokenClaims)
}

func (m *TokenUseCase) ValidateToken(ctx context.Context, raw string, expected entity.TokenType) (*dto.AuthClaims, error) {
	args := m.Called(ctx, raw, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthClaims), args.Error(1)
}

type BlacklistUseCase struct {
	mock.Mock
}

func (m *BlacklistUseCase) CheckBlacklist(ctx context.Context, rawToken string, opts dto.CheckOptions) dto.TokenStatusResult {
	return m.Called(ctx, rawToken, opts).Get(0).(dto.TokenStatusResult)
}

func (m *BlacklistUseCase) BlacklistToken(ctx context.Context, tokenID string, revokedAt, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, revokedAt, expiresAt).Error(0)
}

func (m *BlacklistUseCase) ApplyRemoteRevocation(ctx context.Context, event entity.RevocationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *BlacklistUseCase) InvalidateCached(tokenID string) {
	m.Called(tokenID)
}

func (m *BlacklistUseCase) GetBlacklistStats() service.BlacklistStats {
	return m.Called().Get(0).(service.BlacklistStats)
}

func (m *BlacklistUseCase) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type RevocationUseCase struct {
	mock.Mock
}

func (m *RevocationUseCase) RevokeToken(ctx context.Context, tokenID, reason string) (*entity.RevocationEvent, error) {
	args := m.Called(ctx, tokenID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RevocationEvent), args.Error(1)
}

func (m *RevocationUseCase) RevokeAllForUser(ctx context.Context, userID, reason string) (int, error) {
	args := m.Called(ctx, userID, reason)
	return args.Int(0), args.Error(1)
}

type AuthUseCase struct {
	mock.Mock
}

func (m *AuthUseCase) Login(ctx context.Context, params dto.LoginParams) (*dto.AuthTokens, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthTokens), args.Error(1)
}

func (m *AuthUseCase) Logout(ctx context.Context, params dto.LogoutParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *AuthUseCase) Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*dto.AuthTokens, error) {
	args := m.Called(ctx, refreshToken, clientIP, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthTokens), args.Error(1)
}

type ProxyUseCase struct {
	mock.Mock
}

func (m *ProxyUseCase) Forward(ctx context.Context, upstream, path, query string, header http.Header) (*repository.ExternalAPIResponse, error) {
	args := m.Called(ctx, upstream, path, query, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ExternalAPIResponse), args.Error(1)
}
