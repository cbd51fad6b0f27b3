package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http/middleware"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// AuthHandler serves login, logout and refresh
type AuthHandler struct {
	logger *zap.Logger
	authUC interfaces.AuthUseCase
}

func NewAuthHandler(logger *zap.Logger, authUC interfaces.AuthUseCase) *AuthHandler {
	return &AuthHandler{logger: logger, authUC: authUC}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := h.authUC.Login(c.Request().Context(), dto.LoginParams{
		Username:  req.Username,
		Password:  req.Password,
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Login failed", zap.String("username", req.Username))
		return pkgerrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /api/v1/auth/logout. A revocation that cannot be
// confirmed is reported as 503 so the client knows the server did not
// invalidate the token.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req LogoutRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}

	err := h.authUC.Logout(c.Request().Context(), dto.LogoutParams{
		Access:       claims,
		RefreshToken: req.RefreshToken,
		ClientIP:     c.RealIP(),
	})
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Logout failed", zap.String("token_id", claims.TokenID))
		return pkgerrors.ToHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := h.authUC.Refresh(c.Request().Context(), req.RefreshToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Token refresh failed")
		return pkgerrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, tokens)
}
