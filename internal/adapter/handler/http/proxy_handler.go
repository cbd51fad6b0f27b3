package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// forwardedHeaders are copied to the upstream request
var forwardedHeaders = []string{
	echo.HeaderAccept,
	echo.HeaderAcceptEncoding,
	"Accept-Language",
	echo.HeaderXRequestID,
}

// ProxyHandler passes authenticated reads through to upstream APIs
type ProxyHandler struct {
	logger  *zap.Logger
	proxyUC interfaces.ProxyUseCase
}

func NewProxyHandler(logger *zap.Logger, proxyUC interfaces.ProxyUseCase) *ProxyHandler {
	return &ProxyHandler{logger: logger, proxyUC: proxyUC}
}

// Forward handles GET /api/v1/proxy/:name/*
func (h *ProxyHandler) Forward(c echo.Context) error {
	header := http.Header{}
	for _, key := range forwardedHeaders {
		if v := c.Request().Header.Get(key); v != "" {
			header.Set(key, v)
		}
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" && header.Get(echo.HeaderXRequestID) == "" {
		header.Set(echo.HeaderXRequestID, id)
	}

	resp, err := h.proxyUC.Forward(
		c.Request().Context(),
		c.Param("name"),
		"/"+c.Param("*"),
		c.QueryString(),
		header,
	)
	if err != nil {
		pkgerrors.LogError(h.logger, err, "Proxy request failed", zap.String("upstream", c.Param("name")))
		return pkgerrors.ToHTTPError(err)
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(resp.StatusCode, contentType, resp.Body)
}
