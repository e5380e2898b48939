package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/config"
	"github.com/NomadCrew/feedback-tracker-backend/handlers"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store/filestore"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store/memstore"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store/postgres"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store/redisstore"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/router"
	"github.com/NomadCrew/feedback-tracker-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = newRedisClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout())
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Address, err)
		}
		cancel()
		defer func() { _ = redisClient.Close() }()
	}

	repo, closeRepo, err := newRepository(ctx, cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeRepo()

	feedbackService := services.NewFeedbackService(repo, services.WithPersistenceTimeout(cfg.Storage.Timeout()))

	// A nil *redis.Client must not reach the interface fields as a non-nil value
	var sharedRedis redis.UniversalClient
	if redisClient != nil {
		sharedRedis = redisClient
	}
	healthService := services.NewHealthService(repo, sharedRedis, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		RedisClient:     sharedRedis,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("Feedback server started",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"version", cfg.Server.Version,
			"storage", cfg.Storage.Backend,
			"api", fmt.Sprintf("http://localhost:%s/feedback", cfg.Server.Port),
			"health", fmt.Sprintf("http://localhost:%s/health", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("Shutting down server", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
		return
	}
	log.Info("Server exited")
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return redis.NewClient(opts)
}

// newRepository builds the configured backend and a func that releases it.
func newRepository(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (store.FeedbackRepository, func(), error) {
	log := logger.GetLogger()
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StorageBackendFile:
		repo := filestore.NewFeedbackStore(cfg.Storage.DataFile)
		if err := repo.Ping(ctx); err != nil {
			return nil, noop, err
		}
		log.Infow("Using file storage", "path", repo.Path())
		return repo, noop, nil

	case config.StorageBackendRedis:
		log.Infow("Using Redis storage", "address", cfg.Redis.Address, "key", cfg.Storage.RedisKey)
		return redisstore.NewFeedbackStore(redisClient, cfg.Storage.RedisKey), noop, nil

	case config.StorageBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.URL())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create connection pool: %w", err)
		}

		initCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout())
		defer cancel()
		if err := pool.Ping(initCtx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to run migrations: %w", err)
		}

		repo := postgres.NewFeedbackStore(pool, cfg.Storage.DocumentName)
		log.Infow("Using PostgreSQL storage",
			"database", logger.MaskConnectionString(cfg.Database.URL()),
			"document", cfg.Storage.DocumentName)
		return repo, pool.Close, nil

	case config.StorageBackendMemory:
		log.Info("Using in-memory storage")
		return memstore.NewFeedbackStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
