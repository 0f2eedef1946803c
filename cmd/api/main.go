package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/api"
	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/cache"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/domain"
	"github.com/learnhub/backend/internal/realtime"
	"github.com/learnhub/backend/internal/repository"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting LearnHub API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database
	ctx := context.Background()
	db, err := initDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	// Optional Redis for unread badge counts
	redisClient := initRedis(cfg.Redis.URL, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize dependencies
	repo := repository.NewPostgresRepository(db)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	unreadCache := cache.NewUnread(redisClient, logger)

	// Realtime layer: hub owned by this process's lifecycle, publisher on top
	hub := realtime.NewHub(logger)
	publisher := realtime.NewPublisher(hub, logger)

	// Initialize services
	notificationService := domain.NewNotificationService(repo, repo, publisher, unreadCache, logger)

	// Initialize handlers
	notificationHandler := api.NewNotificationHandler(notificationService, logger)
	announceHandler := api.NewAnnounceHandler(notificationService, logger)
	wsHandler := api.NewWebSocketHandler(hub, repo, logger)
	healthHandler := api.NewHealthHandler(db)

	// Initialize router
	router := api.NewRouter(notificationHandler, announceHandler, wsHandler, healthHandler, jwtManager, logger)
	r := router.Setup()

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENV")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func initDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// initRedis returns nil when no REDIS_URL is configured; the unread cache
// degrades to plain storage counts.
func initRedis(url string, logger *zap.Logger) *redis.Client {
	if url == "" {
		logger.Info("Redis not configured - unread counts served from database")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid REDIS_URL - unread cache disabled", zap.Error(err))
		return nil
	}
	return redis.NewClient(opts)
}
