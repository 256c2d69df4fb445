package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"shortforge/internal/config"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "shortforge-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		log.LogFatal("failed to create media root", err)
	}

	log.Info("shortforge worker started", "concurrency", cfg.WorkerConcurrency)
	if err := worker.Run(ctx, worker.Deps{
		Cfg:  cfg,
		Pool: pool,
		RDB:  rdb,
		Log:  log,
	}); err != nil && !errors.Is(err, context.Canceled) {
		log.LogFatal("worker stopped unexpectedly", err)
	}
	log.Info("shortforge worker stopped")
}
