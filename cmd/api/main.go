package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thomasfevre/chill-split/internal/infra/gateway/chain"
	"github.com/thomasfevre/chill-split/internal/infra/postgres"
	infraRedis "github.com/thomasfevre/chill-split/internal/infra/redis"
	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/internal/platform/relayer"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/handler"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
	"github.com/thomasfevre/chill-split/pkg/config"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting ChillSplit API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"chain_id", cfg.ChainID,
	)

	// Initialize database connection pool (sponsorship ledger)
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize Redis client for snapshot caching
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established")

	// Initialize chain gateway
	chainClient := chain.NewClient(cfg.RPCURL)
	snapshotSource := chain.NewSnapshotAdapter(chainClient, cfg.FactoryAddress)
	relaySubmitter := chain.NewRelay(chainClient)
	log.Info("Chain gateway initialized", "factory", group.ShortenAddress(cfg.FactoryAddress))

	// Initialize services
	snapshotCache := infraRedis.NewSnapshotCacheWithTTL(redisClient, cfg.CacheTTL, log)
	groupSvc := group.NewService(snapshotSource, snapshotCache, log)

	sponsorshipRepo := postgres.NewSponsorshipRepository(db.Pool)
	relayerSvc := relayer.NewService(sponsorshipRepo, relaySubmitter, cfg.RelayerQuotaPerHour, log)

	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	// Initialize HTTP handlers
	groupHandler := handler.NewGroupHandler(groupSvc)
	relayerHandler := handler.NewRelayerHandler(relayerSvc)
	healthHandler := handler.NewHealthHandler(
		db,
		handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: allowedOrigins,
		GroupHandler:   groupHandler,
		RelayerHandler: relayerHandler,
		HealthHandler:  healthHandler,
		JWTMiddleware:  middleware.JWTMiddleware(jwtSvc),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // Sponsorships block on receipt confirmation
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
