package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/logger"
)

// Context keys
const (
	UserIDKey      = logger.UserIDContextKey
	ClaimsKey      = "auth_claims"
	RawTokenKey    = "raw_token"
	TokenStatusKey = "token_status"
)

const (
	ErrorInvalidRequest    = "invalid_request"
	ErrorInvalidToken      = "invalid_token"
	ErrorInsufficientScope = "insufficient_scope"
)

// ErrorResponse is the body of every authentication rejection
type ErrorResponse struct {
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description"`
	Details          *RejectionDetail `json:"details,omitempty"`
}

// RejectionDetail describes why a token was refused
type RejectionDetail struct {
	Status        dto.TokenStatus `json:"status"`
	TokenID       string          `json:"token_id,omitempty"`
	BlacklistedAt *time.Time      `json:"blacklisted_at,omitempty"`
	CheckedAt     time.Time       `json:"checked_at"`
	Reason        string          `json:"reason,omitempty"`
}

// JWTAuthMiddleware verifies the bearer token and rejects revoked ones
type JWTAuthMiddleware struct {
	tokenUseCase     interfaces.TokenUseCase
	blacklistUseCase interfaces.BlacklistUseCase
	logger           *zap.Logger
}

func NewJWTAuthMiddleware(
	tokenUseCase interfaces.TokenUseCase,
	blacklistUseCase interfaces.BlacklistUseCase,
	logger *zap.Logger,
) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		tokenUseCase:     tokenUseCase,
		blacklistUseCase: blacklistUseCase,
		logger:           logger,
	}
}

// Handle runs signature validation first, then the blacklist check
func (m *JWTAuthMiddleware) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject(c, ErrorInvalidRequest, "missing bearer token", nil)
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return reject(c, ErrorInvalidRequest, "authorization header must be Bearer <token>", nil)
			}
			rawToken := parts[1]

			ctx := c.Request().Context()

			claims, err := m.tokenUseCase.ValidateToken(ctx, rawToken, entity.TokenTypeAccess)
			if err != nil {
				m.logger.Info("Authentication failed",
					zap.Error(err),
					zap.String("ip", c.RealIP()),
					zap.String("path", c.Request().URL.Path),
				)
				return reject(c, ErrorInvalidToken, "the access token is invalid or expired", nil)
			}

			status := m.blacklistUseCase.CheckBlacklist(ctx, rawToken, dto.CheckOptions{})
			switch status.Status {
			case dto.TokenStatusBlacklisted:
				m.logger.Info("Rejected revoked token",
					zap.String("token_id", status.TokenID),
					zap.String("user_id", claims.UserID),
					zap.String("ip", c.RealIP()),
					zap.String("path", c.Request().URL.Path),
				)
				return reject(c, ErrorInvalidToken, "the access token has been revoked", detailOf(status))
			case dto.TokenStatusInvalid:
				return reject(c, ErrorInvalidToken, "the access token could not be verified", detailOf(status))
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)
			c.Set(RawTokenKey, rawToken)
			c.Set(TokenStatusKey, status)

			return next(c)
		}
	}
}

// RequireRole must run after Handle
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return reject(c, ErrorInvalidToken, "authentication required", nil)
			}
			if !claims.HasRole(role) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="insufficient_scope"`)
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:            ErrorInsufficientScope,
					ErrorDescription: "role " + role + " is required",
				})
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the verified claims stored by Handle
func ClaimsFrom(c echo.Context) (*dto.AuthClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*dto.AuthClaims)
	return claims, ok && claims != nil
}

func detailOf(status dto.TokenStatusResult) *RejectionDetail {
	return &RejectionDetail{
		Status:        status.Status,
		TokenID:       status.TokenID,
		BlacklistedAt: status.BlacklistedAt,
		CheckedAt:     status.CheckedAt,
		Reason:        status.Reason,
	}
}

func reject(c echo.Context, code, description string, detail *RejectionDetail) error {
	challenge := "Bearer"
	if code != ErrorInvalidRequest {
		challenge = `Bearer error="` + code + `"`
	}
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
	return c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
		Details:          detail,
	})
}
