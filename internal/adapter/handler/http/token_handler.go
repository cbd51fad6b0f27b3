package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// TokenHandler exposes revocation and blacklist inspection
type TokenHandler struct {
	logger       *zap.Logger
	tokenUC      interfaces.TokenUseCase
	revocationUC interfaces.RevocationUseCase
	blacklistUC  interfaces.BlacklistUseCase
}

func NewTokenHandler(
	logger *zap.Logger,
	tokenUC interfaces.TokenUseCase,
	revocationUC interfaces.RevocationUseCase,
	blacklistUC interfaces.BlacklistUseCase,
) *TokenHandler {
	return &TokenHandler{
		logger:       logger,
		tokenUC:      tokenUC,
		revocationUC: revocationUC,
		blacklistUC:  blacklistUC,
	}
}

// RevokeToken handles POST /api/v1/tokens/:id/revoke
func (h *TokenHandler) RevokeToken(c echo.Context) error {
	tokenID := c.Param("id")
	if tokenID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token id is required")
	}

	var req RevokeRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	if req.Reason == "" {
		req.Reason = constants.RevocationReasonAdmin
	}

	event, err := h.revocationUC.RevokeToken(c.Request().Context(), tokenID, req.Reason)
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Token revocation failed", zap.String("token_id", tokenID))
		return pkgerrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, event)
}

// RevokeAllForUser handles POST /api/v1/users/:id/revoke-all
func (h *TokenHandler) RevokeAllForUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}

	var req RevokeRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	if req.Reason == "" {
		req.Reason = constants.RevocationReasonRevokeAll
	}

	revoked, err := h.revocationUC.RevokeAllForUser(c.Request().Context(), userID, req.Reason)
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Bulk revocation failed",
			zap.String("user_id", userID),
			zap.Int("revoked", revoked),
		)
		return pkgerrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"revoked": revoked,
	})
}

// Status handles GET /api/v1/tokens/status. It reports on the presented
// bearer token without rejecting a revoked one. ?fresh=true skips the
// decision cache. Tokens that fail signature validation never reach the store.
func (h *TokenHandler) Status(c echo.Context) error {
	raw := usecase.StripBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bearer token is required")
	}

	if _, err := h.tokenUC.ValidateToken(c.Request().Context(), raw, ""); err != nil {
		h.logger.Debug("Status requested for an unverifiable token", zap.Error(err))
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	fresh, _ := strconv.ParseBool(c.QueryParam("fresh"))
	result := h.blacklistUC.CheckBlacklist(c.Request().Context(), raw, dto.CheckOptions{BypassCache: fresh})

	return c.JSON(http.StatusOK, result)
}

// Stats handles GET /api/v1/blacklist/stats
func (h *TokenHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.blacklistUC.GetBlacklistStats())
}
