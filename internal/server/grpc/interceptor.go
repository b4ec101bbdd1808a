package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call with its status code. Health
// probes that succeed are logged at debug level.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	fields := []any{
		"method", info.FullMethod,
		"code", code.String(),
		"latency_ms", time.Since(start).Milliseconds(),
	}

	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "gRPC request", fields...)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		s.logger.Error(ctx, "gRPC request", append(fields, "error", err)...)
	default:
		s.logger.Warn(ctx, "gRPC request", append(fields, "error", err)...)
	}

	return resp, err
}
