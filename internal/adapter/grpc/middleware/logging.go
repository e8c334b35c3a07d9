package middleware

import (
	"context"
	"time"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every unary call and turns handler panics into
// codes.Internal.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	log = log.Named("GRPC")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("gRPC handler panicked", zap.String("method", info.FullMethod), zap.Any("panic", rec))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			duration := time.Since(start)
			if err != nil {
				log.Warn("gRPC request failed",
					zap.String("method", info.FullMethod),
					zap.Duration("duration", duration),
					zap.String("code", status.Code(err).String()),
					zap.Error(err))
				return
			}
			log.Info("gRPC request completed", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}()
		return handler(ctx, req)
	}
}
