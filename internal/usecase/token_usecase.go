package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// TokenConfig holds signing and lifetime settings
type TokenConfig struct {
	Issuer             string
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // minutes
	// ClockSkew is the leeway applied to exp, iat and nbf
	ClockSkew time.Duration
}

// authClaims is the JWT payload issued by this service
type authClaims struct {
	Username  string   `json:"username,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	TokenType string   `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

type TokenUseCase struct {
	logger          *zap.Logger
	config          TokenConfig
	tokenRepository repository.TokenRepository
	now             func() time.Time
}

func NewTokenUseCase(
	logger *zap.Logger,
	config TokenConfig,
	tokenRepo repository.TokenRepository,
	now func() time.Time,
) interfaces.TokenUseCase {
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = constants.AccessTokenExpiry
	}
	if config.RefreshTokenExpiry <= 0 {
		config.RefreshTokenExpiry = constants.RefreshTokenExpiry
	}
	if now == nil {
		now = time.Now
	}

	return &TokenUseCase{
		logger:          logger,
		config:          config,
		tokenRepository: tokenRepo,
		now:             now,
	}
}

func (uc *TokenUseCase) lifetime(tokenType entity.TokenType) time.Duration {
	if tokenType == entity.TokenTypeRefresh {
		return time.Duration(uc.config.RefreshTokenExpiry) * time.Minute
	}
	return time.Duration(uc.config.AccessTokenExpiry) * time.Minute
}

// IssueToken mints an HS256 token with a fresh jti and records it
func (uc *TokenUseCase) IssueToken(ctx context.Context, params dto.IssueParams) (*dto.IssuedToken, error) {
	if params.TokenType == "" {
		params.TokenType = entity.TokenTypeAccess
	}

	// JWT NumericDate has second precision
	issuedAt := uc.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(uc.lifetime(params.TokenType))
	tokenID := uuid.NewString()

	claims := authClaims{
		Username:  params.Username,
		Roles:     params.Roles,
		TokenType: string(params.TokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   params.UserID,
			Issuer:    uc.config.Issuer,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.config.Secret))
	if err != nil {
		uc.logger.Error("Failed to sign token", zap.Error(err))
		return nil, pkgerrors.NewAppError(pkgerrors.ErrInternal, "failed to sign token", err)
	}

	token := entity.NewToken(tokenID, params.UserID, params.Username, params.Roles, params.TokenType, issuedAt, expiresAt)
	token.ClientIP = params.ClientIP
	token.UserAgent = params.UserAgent

	if err := uc.tokenRepository.Save(ctx, token); err != nil {
		uc.logger.Error("Failed to record issued token",
			zap.String("token_id", tokenID),
			zap.Error(err),
		)
		return nil, pkgerrors.Wrap(err, "failed to record token")
	}

	return &dto.IssuedToken{
		SignedToken: signed,
		TokenID:     tokenID,
		TokenType:   params.TokenType,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// StripBearer removes an optional "Bearer " prefix
func StripBearer(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len(constants.BearerPrefix) && strings.EqualFold(raw[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return strings.TrimSpace(raw[len(constants.BearerPrefix):])
	}
	return raw
}

func (uc *TokenUseCase) ExtractClaims(raw string) dto.ParseResult {
	raw = StripBearer(raw)
	if strings.Count(raw, ".") != 2 {
		return dto.ParseResult{Kind: dto.ParseMalformed}
	}

	var claims authClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return dto.ParseResult{Kind: dto.ParseMalformed}
	}

	result := dto.ParseResult{
		Kind:      dto.ParseOK,
		TokenID:   claims.ID,
		Subject:   claims.Subject,
		TokenType: entity.TokenType(claims.TokenType),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return result
}

func (uc *TokenUseCase) ExtractOrFallback(raw string) dto.TokenClaims {
	parsed := uc.ExtractClaims(raw)
	if parsed.OK() && parsed.TokenID != "" && !parsed.ExpiresAt.IsZero() {
		return dto.TokenClaims{
			TokenID:   parsed.TokenID,
			IssuedAt:  parsed.IssuedAt,
			ExpiresAt: parsed.ExpiresAt,
		}
	}

	now := uc.now().UTC()
	return dto.TokenClaims{
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(constants.FallbackTokenExpiry),
		Fallback:  true,
	}
}

func (uc *TokenUseCase) ValidateToken(ctx context.Context, raw string, expected entity.TokenType) (*dto.AuthClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(uc.config.ClockSkew),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if uc.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.config.Issuer))
	}
	parser := jwt.NewParser(opts...)

	var claims authClaims
	_, err := parser.ParseWithClaims(StripBearer(raw), &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(uc.config.Secret), nil
	})
	if err != nil {
		return nil, domainErrors.ErrInvalidToken.WithCause(err)
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing jti or sub", domainErrors.ErrInvalidToken)
	}
	if expected != "" && entity.TokenType(claims.TokenType) != expected {
		return nil, fmt.Errorf("%w: expected %s token", domainErrors.ErrInvalidToken, expected)
	}

	result := &dto.AuthClaims{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Roles:     claims.Roles,
		TokenID:   claims.ID,
		TokenType: entity.TokenType(claims.TokenType),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return result, nil
}
