package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor logs every unary call with its status code and duration
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		startTime := time.Now()

		service := path.Dir(info.FullMethod)[1:]
		method := path.Base(info.FullMethod)

		resp, err = handler(ctx, req)

		statusCode := codeOf(err)
		fields := []zap.Field{
			zap.String("grpc.service", service),
			zap.String("grpc.method", method),
			zap.String("grpc.code", statusCode.String()),
			zap.Duration("grpc.duration", time.Since(startTime)),
		}

		switch {
		case statusCode == codes.OK:
			logger.Debug("gRPC request completed", fields...)
		case isTransientCode(statusCode):
			logger.Warn("gRPC request failed", append(fields, zap.Error(err))...)
		default:
			logger.Error("gRPC request error", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}

// NewGrpcStreamServerInterceptor logs stream lifetimes and message counts
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		startTime := time.Now()

		wrapped := &countingServerStream{ServerStream: ss}
		err := handler(srv, wrapped)

		statusCode := codeOf(err)
		fields := []zap.Field{
			zap.String("grpc.service", path.Dir(info.FullMethod)[1:]),
			zap.String("grpc.method", path.Base(info.FullMethod)),
			zap.String("grpc.code", statusCode.String()),
			zap.Int("grpc.recv_count", wrapped.recvCount),
			zap.Int("grpc.send_count", wrapped.sendCount),
			zap.Duration("grpc.duration", time.Since(startTime)),
		}

		switch {
		case statusCode == codes.OK, statusCode == codes.Canceled:
			logger.Debug("gRPC stream closed", fields...)
		case isTransientCode(statusCode):
			logger.Warn("gRPC stream failed", append(fields, zap.Error(err))...)
		default:
			logger.Error("gRPC stream error", append(fields, zap.Error(err))...)
		}

		return err
	}
}

type countingServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

func (w *countingServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

func (w *countingServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unknown
}

func isTransientCode(code codes.Code) bool {
	switch code {
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss:
		return true
	}
	return false
}
