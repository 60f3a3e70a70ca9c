package main

import (
	"context"
	"time"

	"legaldoc/internal/activities"
	"legaldoc/internal/config"
	"legaldoc/internal/dictionary"
	"legaldoc/internal/logging"
	"legaldoc/internal/providers"
	"legaldoc/internal/storage"
	"legaldoc/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger, err := logging.New(cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal("failed to connect to temporal", zap.String("address", cfg.TemporalAddress), zap.Error(err))
	}
	defer c.Close()

	pm, err := providers.NewManager(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to build llm providers", zap.Error(err))
	}
	defer pm.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dictOpts := dictionary.Options{
		BaseURL: cfg.DictionaryBase,
		Timeout: cfg.DictionaryTimeout,
		TTL:     cfg.DefinitionTTL,
		Logger:  logger,
	}
	if cfg.RedisURL != "" {
		rdb, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, caching definitions in memory", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			dictOpts.Cache = dictionary.NewRedisCache(rdb)
		}
	}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(pm, dictionary.New(dictOpts), cfg.LLMTimeout))

	logger.Info("legaldoc worker listening",
		zap.String("address", cfg.TemporalAddress),
		zap.String("queue", cfg.TemporalTaskQueue),
		zap.Strings("llm_providers", pm.Names()),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
