package grpc

import (
	"github.com/compraventa/marketplace-service/internal/adapter/grpc/middleware"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MaxRecvMsgSize fits a draft carrying the maximum number of images at the
// maximum size, base64-encoded inside the JSON body, plus the text fields.
const MaxRecvMsgSize = validation.MaxImages*validation.MaxImageBytes*4/3 + 4<<20

// NewGRPCServer builds the server with tracing, logging and auth and
// registers the moderation and health services. The returned cleanup stops
// the server gracefully.
func NewGRPCServer(appLogger *logger.Logger, jwtSecret string, srv ModerationServer) (*grpc.Server, func()) {
	publicMethods := map[string]bool{
		CheckTextMethod:                      true,
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}

	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(MaxRecvMsgSize),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.LoggingInterceptor(appLogger),
			middleware.AuthInterceptor(jwtSecret, appLogger, publicMethods),
		),
	)

	RegisterModerationServer(server, srv)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	appLogger.Info("gRPC server configured with interceptors: Tracing, Logging, Auth")

	cleanup := func() {
		healthServer.Shutdown()
		appLogger.Info("Calling gRPC server's GracefulStop...")
		server.GracefulStop()
		appLogger.Info("gRPC server GracefulStop completed.")
	}
	return server, cleanup
}
