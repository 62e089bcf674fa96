package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/analyzer"
	"github.com/Shresth17/SahayAI/internal/cache"
	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/database"
	"github.com/Shresth17/SahayAI/internal/handlers"
	"github.com/Shresth17/SahayAI/internal/jobs"
	"github.com/Shresth17/SahayAI/internal/log"
	"github.com/Shresth17/SahayAI/internal/queue"
	"github.com/Shresth17/SahayAI/internal/repository"
	"github.com/Shresth17/SahayAI/internal/server"
	"github.com/Shresth17/SahayAI/internal/service"
	"github.com/Shresth17/SahayAI/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	if cfg.Security.JWTSecret == config.DevJWTSecret {
		logger.Warn().Msg("running with the insecure development signing secret")
	}

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	userRepo := repository.NewUserRepository(dbPool)
	grievanceRepo := repository.NewGrievanceRepository(dbPool)
	publisher := queue.NewPublisher(redisClient, cfg.Redis.Stream)
	analyzerClient := analyzer.NewClient(cfg.Analyzer, logger)

	authService := service.NewAuthService(userRepo, cfg, logger)
	grievanceService := service.NewGrievanceService(grievanceRepo, objectStore, publisher, analyzerClient, cfg, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authService, grievanceService, objectStore, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(grievanceRepo, publisher, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
