package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
)

const healthPingTimeout = time.Second

// Pinger checks a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger      *zap.Logger
	blacklistUC interfaces.BlacklistUseCase
	store       Pinger
}

// NewHealthHandler builds the handler. store may be nil.
func NewHealthHandler(logger *zap.Logger, blacklistUC interfaces.BlacklistUseCase, store Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, blacklistUC: blacklistUC, store: store}
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":    "ok",
		"blacklist": h.blacklistUC.GetBlacklistStats(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["error"] = err.Error()
		}
	}

	return c.JSON(status, body)
}
