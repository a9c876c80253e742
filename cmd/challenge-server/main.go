package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/api"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/cache"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/challenge"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/config"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/queue"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/scheduler"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/seed"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/stats"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env if present, then configuration from the environment
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting challenge-server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize Redis (listing cache + delayed job queue)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(initCtx).Err(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.Info("redis connected successfully", "addr", cfg.Redis.Address)

	listingCache := cache.New(redisClient)
	jobQueue := queue.NewDelayedQueue(redisClient, cfg.Queue.Name)

	// Completion scheduler fires deadline jobs against the store
	completionScheduler := scheduler.New(jobQueue, repo, listingCache, cfg.Queue.PollInterval)

	// Statistics aggregation with daily snapshots
	aggregator := stats.New(repo)
	dailyWorker := stats.NewDailyWorker(aggregator)

	// Challenge lifecycle service
	service := challenge.NewService(repo, listingCache, completionScheduler, aggregator)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background workers
	completionScheduler.Start(ctx)
	dailyWorker.Start(ctx)

	// Apply seed data when configured
	if cfg.Seed.File != "" {
		seedFile, err := seed.Load(cfg.Seed.File)
		if err != nil {
			slog.Error("failed to load seed file", "error", err, "file", cfg.Seed.File)
			os.Exit(1)
		}
		if err := seed.Apply(initCtx, seedFile, repo, completionScheduler); err != nil {
			slog.Error("failed to apply seed data", "error", err)
			os.Exit(1)
		}
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, service, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("challenge-server stopped")
}
