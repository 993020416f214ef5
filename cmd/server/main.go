package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/bioastro-backend/internal/adapter/cache"
	"github.com/simaogato/bioastro-backend/internal/adapter/ephemeris"
	grpcadapter "github.com/simaogato/bioastro-backend/internal/adapter/grpc"
	"github.com/simaogato/bioastro-backend/internal/adapter/knowledge"
	"github.com/simaogato/bioastro-backend/internal/adapter/repository/memory"
	"github.com/simaogato/bioastro-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/bioastro-backend/internal/config"
	"github.com/simaogato/bioastro-backend/internal/domain"
	"github.com/simaogato/bioastro-backend/internal/logging"
	"github.com/simaogato/bioastro-backend/internal/usecase/chart"
	"github.com/simaogato/bioastro-backend/internal/usecase/seeder"
	"github.com/simaogato/bioastro-backend/internal/usecase/worker"
)

const (
	dbConnectAttempts = 5
	shutdownTimeout   = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server.failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// 1. Setup storage
	charts, bodies, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	if err := seeder.NewCatalogueSeeder(bodies).Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed body catalogue: %w", err)
	}
	logger.Info("catalogue.seed.completed", zap.Int("bodies", len(domain.DefaultCatalogue)))

	// 2. Ephemeris: provider behind the caching client
	ephemerisCache, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	provider, err := ephemeris.NewProvider(cfg.EphemerisProvider, ephemeris.RemoteConfig{
		Endpoint:          cfg.HorizonsEndpoint,
		Timeout:           cfg.EphemerisTimeout,
		RequestsPerSecond: cfg.HorizonsRate,
	}, logger)
	if err != nil {
		return err
	}
	client := ephemeris.NewClient(provider, ephemerisCache, ephemeris.ClientConfig{
		CacheTTL:    cfg.EphemerisCacheTTL,
		FallbackTTL: cfg.EphemerisFallbackTTL,
	}, logger)

	kb, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		return err
	}

	// 3. Initialize services (use cases)
	chartService := chart.NewService(charts, bodies, client, kb, logger)
	queue := worker.NewQueue(chartService, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		MaxRetries:  cfg.WorkerMaxRetries,
		RetryBase:   cfg.WorkerRetryBase,
		Retention:   cfg.WorkerRetention,
	}, logger)

	// 4. Start gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterChartServiceServer(grpcServer, grpcadapter.NewServer(chartService, queue))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server.grpc.listening",
			zap.String("addr", cfg.GRPCAddr),
			zap.String("provider", cfg.EphemerisProvider),
			zap.String("storage", cfg.StorageBackend),
		)
		serveErr <- grpcServer.Serve(lis)
	}()

	// Graceful shutdown
	return waitForShutdown(grpcServer, queue, serveErr, logger)
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.ChartRepository, domain.BodyRepository, func(), error) {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("storage.memory.enabled")
		store := memory.NewStore()
		return store, store, func() {}, nil
	}

	var (
		db  *postgres.DB
		err error
	)
	// Postgres may still be starting (docker compose), retry with a short pause
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err = postgres.NewDB(cfg.DatabaseURL)
		if err == nil {
			break
		}
		logger.Warn("storage.postgres.connect_retry", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("storage.postgres.close_failed", zap.Error(err))
		}
	}
	return postgres.NewChartRepository(db), postgres.NewBodyRepository(db), closeDB, nil
}

func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.EphemerisCache, func(), error) {
	if cfg.CacheBackend != config.CacheSQLite {
		return cache.NewMemory(), func() {}, nil
	}

	store, err := cache.NewSQLite(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	purged, err := store.Purge(ctx)
	if err != nil {
		logger.Warn("cache.sqlite.purge_failed", zap.Error(err))
	} else {
		logger.Info("cache.sqlite.opened", zap.String("path", cfg.CachePath), zap.Int64("expired_purged", purged))
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("cache.sqlite.close_failed", zap.Error(err))
		}
	}
	return store, closeStore, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server and the queue
func waitForShutdown(grpcServer *grpclib.Server, queue *worker.Queue, serveErr <-chan error, logger *zap.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		logger.Info("server.shutdown.started", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("failed to serve gRPC server: %w", err)
	}

	grpcServer.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := queue.Shutdown(ctx); err != nil {
		logger.Warn("server.shutdown.queue_timeout", zap.Error(err))
	}

	logger.Info("server.shutdown.completed")
	return nil
}
