package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty,jwt"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,jwt"`
}

type RevokeRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
