package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/api"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/api/middleware"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/config"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/inbox"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/store"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Open the message store
	docs, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store initialization failed")
	}
	defer docs.Close()
	logger.Info().Str("backend", docs.Name()).Msg("message store ready")

	// Share the Redis connection with the rate limiter when there is one
	var redisClient *redis.Client
	if rs, ok := docs.(*store.RedisStore); ok {
		redisClient = rs.Client()
	} else if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis for rate limiting")
	}

	svc := inbox.NewService(docs, logger)

	// Create router
	router := api.NewRouter(logger, svc, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		RedisClient:    redisClient,
		RateLimit: middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			TrustedProxies:   cfg.TrustedProxies,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
			ContactRequests:  cfg.ContactRateLimit,
			ContactWindow:    cfg.ContactRateWindow,
		},
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting contact server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// In-flight writes finish before the store is closed
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
