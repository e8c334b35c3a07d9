package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	grpcAdapter "github.com/compraventa/marketplace-service/internal/adapter/grpc"
	"github.com/compraventa/marketplace-service/internal/adapter/httpapi"
	natsAdapter "github.com/compraventa/marketplace-service/internal/adapter/messaging/nats"
	"github.com/compraventa/marketplace-service/internal/adapter/repository/cache"
	mongoRepo "github.com/compraventa/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/compraventa/marketplace-service/internal/adapter/storage/s3"
	"github.com/compraventa/marketplace-service/internal/config"
	"github.com/compraventa/marketplace-service/internal/jobs"
	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/compraventa/marketplace-service/internal/listing/usecase"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/mailer"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/compraventa/marketplace-service/internal/platform/metrics"
	"github.com/compraventa/marketplace-service/internal/platform/tracer"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const (
	metricsNamespace = "marketplace"
	shutdownTimeout  = 15 * time.Second
)

func main() {
	var failed bool
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()

	// 1. Configuration (.env is loaded by config.Load)
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger(nil).Fatal("Failed to load configuration", zap.Error(err))
	}

	// 2. Logger
	appLogger := logger.NewLogger(&logger.LoggerConfig{
		Level:  strings.ToLower(cfg.LogLevel),
		Format: strings.ToLower(cfg.LogFormat),
	})
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.String("metrics_port", cfg.MetricsPort),
		zap.String("nats_url", cfg.NATSURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(metricsNamespace)

	// 4. MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		cancelPing()
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	cancelPing()
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}
	favoriteRepo, err := mongoRepo.NewFavoriteRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize FavoriteRepository", zap.Error(err))
	}
	reportRepo, err := mongoRepo.NewReportRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ReportRepository", zap.Error(err))
	}
	userRepo := mongoRepo.NewUserRepository(db, appLogger)

	// 5. Redis. Without it flows live in process memory and reads skip the cache.
	var (
		listingCache domain.ListingCache
		flows        submission.Store = submission.NewMemoryStore()
	)
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddress)
	if err != nil {
		appLogger.Warn("Redis unavailable, using in-memory submission store", zap.String("addr", cfg.RedisAddress), zap.Error(err))
	} else {
		defer redisClient.Close()
		listingCache = cache.NewListingCache(redisClient, cfg.ListingCacheTTL)
		flows = cache.NewFlowStore(redisClient, cfg.SubmissionTTL)
	}

	// 6. NATS
	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()

	// 7. Object storage
	storage, err := s3.NewS3Storage(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// 8. Email
	var notifier domain.Notifier
	if cfg.SMTPEmail != "" {
		notifier = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPEmail,
			Password: cfg.SMTPPassword,
		})
	} else {
		appLogger.Info("SMTP_EMAIL not set, listing notifications disabled")
	}

	// 9. Moderation and validation
	wordlist := moderation.DefaultWordlist()
	if cfg.WordlistPath != "" {
		if wordlist, err = moderation.LoadWordlist(cfg.WordlistPath); err != nil {
			appLogger.Fatal("Failed to load wordlist", zap.String("path", cfg.WordlistPath), zap.Error(err))
		}
	}
	matcher, err := moderation.FromWordlist(wordlist, appLogger, moderation.WithFailureHook(metricsManager.MatcherFailed))
	if err != nil {
		appLogger.Fatal("Failed to build profanity matcher", zap.Error(err))
	}
	locations := location.Default()
	media := validation.NewMediaValidator(nil, appLogger)
	orchestrator := validation.NewOrchestrator(matcher, locations, media, metricsManager, appLogger)

	// 10. Usecases
	listingUsecase := usecase.NewListingUsecase(listingRepo, listingCache, natsPublisher, appLogger)
	favoriteUsecase := usecase.NewFavoriteUsecase(favoriteRepo, listingRepo, natsPublisher, appLogger)
	reportUsecase := usecase.NewReportUsecase(reportRepo, listingRepo, matcher, natsPublisher, appLogger)
	reportUsecase.OnReport(metricsManager.RecordReport)
	photoUsecase := usecase.NewPhotoUsecase(storage, listingRepo, listingCache, media, appLogger)
	submissionUsecase := usecase.NewSubmissionUsecase(usecase.SubmissionDeps{
		Flows:     flows,
		Validator: orchestrator,
		Listings:  listingRepo,
		Storage:   storage,
		Users:     userRepo,
		Notifier:  notifier,
		Publisher: natsPublisher,
		Locations: locations,
		OnCreated: metricsManager.ListingCreated,
	}, appLogger)

	// 11. Re-moderation sweep
	sweeper := jobs.NewSweeper(listingRepo, matcher, listingUsecase, metricsManager.ListingFlagged, appLogger)
	scheduler := jobs.NewScheduler(sweeper, cfg.SweepSchedule, appLogger)
	if err := scheduler.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start moderation sweep", zap.Error(err))
	}
	defer scheduler.Stop()

	// 12. Servers
	httpServer := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Listings:       listingUsecase,
			Favorites:      favoriteUsecase,
			Reports:        reportUsecase,
			Photos:         photoUsecase,
			Submissions:    submissionUsecase,
			Checker:        matcher,
			Locations:      locations,
			Metrics:        metricsManager,
			JWTSecret:      cfg.JWTSecret,
			AllowedOrigins: cfg.AllowedOrigins,
		}, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, grpcCleanup := grpcAdapter.NewGRPCServer(appLogger, cfg.JWTSecret, grpcAdapter.NewHandler(matcher, orchestrator, appLogger))
	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	go func() {
		if err := metrics.StartMetricsServer(cfg.MetricsPort, appLogger, metricsManager); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcCleanup()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		failed = true
		return
	}
	appLogger.Info("Application stopped")
}
