package http

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http/middleware"
)

// statusRequestsPerSecond bounds the unauthenticated status route per client address
const statusRequestsPerSecond = 20

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Auth   *AuthHandler
	Token  *TokenHandler
	Health *HealthHandler
	Proxy  *ProxyHandler
}

// RegisterRoutes wires the API onto e. Routes behind auth run signature
// validation and the blacklist check.
func RegisterRoutes(e *echo.Echo, h Handlers, auth *middleware.JWTAuthMiddleware) {
	e.GET("/health", h.Health.Health)

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout, auth.Handle())

	statusLimiter := echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(statusRequestsPerSecond))
	v1.GET("/tokens/status", h.Token.Status, statusLimiter)

	adminOnly := []echo.MiddlewareFunc{auth.Handle(), middleware.RequireRole(entity.RoleAdmin)}
	v1.POST("/tokens/:id/revoke", h.Token.RevokeToken, adminOnly...)
	v1.POST("/users/:id/revoke-all", h.Token.RevokeAllForUser, adminOnly...)
	v1.GET("/blacklist/stats", h.Token.Stats, adminOnly...)

	if h.Proxy != nil {
		v1.GET("/proxy/:name/*", h.Proxy.Forward, auth.Handle())
	}
}
