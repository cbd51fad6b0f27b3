package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dariemcarlosdev/secure-clean-api/pkg/logger"
)

// BlacklistService is the health service name that tracks the blacklist store
const BlacklistService = "auth.v1.Blacklist"

// Server wraps the gRPC server and its health service
type Server struct {
	server  *grpc.Server
	health  *health.Server
	logger  *zap.Logger
	address string
}

// Config holds the listen settings
type Config struct {
	Port    string
	Timeout int
}

func NewServer(cfg Config, zapLogger *zap.Logger) *Server {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(logger.NewGrpcUnaryServerInterceptor(zapLogger)),
		grpc.StreamInterceptor(logger.NewGrpcStreamServerInterceptor(zapLogger)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(BlacklistService, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(server)

	return &Server{
		server:  server,
		health:  healthServer,
		logger:  zapLogger,
		address: fmt.Sprintf(":%s", cfg.Port),
	}
}

// SetServing reports the blacklist store health. The overall status follows it.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(BlacklistService, status)
	s.health.SetServingStatus("", status)
}

// RegisterService lets callers add their own services
func (s *Server) RegisterService(register func(server *grpc.Server)) {
	register(s.server)
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.Serve(listener)
}

func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server started", zap.String("address", listener.Addr().String()))
	return s.server.Serve(listener)
}

// Shutdown stops gracefully and falls back to a hard stop when ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping gRPC server...")
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("gRPC server forced to stop")
		s.server.Stop()
		return ctx.Err()
	case <-stopped:
		s.logger.Info("gRPC server stopped")
		return nil
	}
}
