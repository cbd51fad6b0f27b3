package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPError turns err into the echo error the HTTP error handler renders.
// Only the AppError message is exposed, never the wrapped cause.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var echoErr *echo.HTTPError
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return echo.NewHTTPError(HTTPStatus(appErr.Code()), appErr.Message()).SetInternal(err)
	case errors.As(err, &echoErr):
		return echoErr
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}
