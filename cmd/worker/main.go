package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shresth17/SahayAI/internal/analyzer"
	"github.com/Shresth17/SahayAI/internal/cache"
	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/database"
	"github.com/Shresth17/SahayAI/internal/log"
	"github.com/Shresth17/SahayAI/internal/queue"
	"github.com/Shresth17/SahayAI/internal/repository"
	"github.com/Shresth17/SahayAI/internal/storage"
	"github.com/Shresth17/SahayAI/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	grievanceRepo := repository.NewGrievanceRepository(dbPool)
	textAnalyzer := analyzer.NewClient(cfg.Analyzer, logger)

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	processor := tasks.NewProcessor(logger, grievanceRepo, textAnalyzer, objectStore)
	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		time.Minute,
		logger,
		processor,
	)

	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ensure consumer group failed")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
