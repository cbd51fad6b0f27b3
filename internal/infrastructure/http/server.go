package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/pkg/logger"
)

// Server wraps the echo router and its http.Server
type Server struct {
	router  *echo.Echo
	server  *http.Server
	logger  *zap.Logger
	address string
}

// Config holds the listen settings. Timeout is in seconds.
type Config struct {
	Port    string
	Timeout int
	Debug   bool
}

// RequestValidator plugs go-playground/validator into echo's c.Validate
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg Config, zapLogger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.Validator = NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(zapLogger))

	logger.WithEchoLogger(e, zapLogger)

	address := fmt.Sprintf(":%s", cfg.Port)
	timeout := time.Duration(cfg.Timeout) * time.Second

	return &Server{
		router: e,
		server: &http.Server{
			Addr:         address,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  timeout,
		},
		logger:  zapLogger,
		address: address,
	}
}

func (s *Server) Router() *echo.Echo {
	return s.router
}

// RegisterRoutes hands the router to a route registration function
func (s *Server) RegisterRoutes(register func(e *echo.Echo)) {
	register(s.router)
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server started", zap.String("address", s.address))

	s.server.Handler = s.router
	if err := s.router.StartServer(s.server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server...")

	// StartServer serves s.server, which echo's own Shutdown does not track
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
