package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legaldoc/internal/analysis"
	"legaldoc/internal/api"
	"legaldoc/internal/config"
	"legaldoc/internal/dictionary"
	"legaldoc/internal/logging"
	"legaldoc/internal/pipeline"
	"legaldoc/internal/providers"
	"legaldoc/internal/safety"
	"legaldoc/internal/storage"
	"legaldoc/internal/telemetry"
	"legaldoc/internal/workflows"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger, err := logging.New(cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("logger config failed, using production defaults", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	recorder, err := telemetry.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open telemetry store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer func() { _ = recorder.Close() }()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache and rate limit", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
		}
	}

	patterns, err := safety.LoadPatterns(cfg.InjectionPatternsFile)
	if err != nil {
		logger.Fatal("failed to load injection patterns", zap.Error(err))
	}
	validator := safety.NewValidator(cfg.MinInputChars, cfg.MaxInputChars, patterns)

	var analyzer pipeline.Analyzer
	switch cfg.AnalysisMode {
	case "temporal":
		tc, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			logger.Fatal("failed to connect to temporal", zap.String("address", cfg.TemporalAddress), zap.Error(err))
		}
		defer tc.Close()
		analyzer = workflows.NewDispatcher(tc, cfg.TemporalTaskQueue, cfg.LLMTimeout, cfg.DictionaryTimeout, logger)
	default:
		pm, err := providers.NewManager(context.Background(), cfg, logger)
		if err != nil {
			logger.Fatal("failed to build llm providers", zap.String("providers", cfg.LLMProviders), zap.Error(err))
		}
		defer pm.Close()
		dict := newDictionary(cfg, rdb, logger)
		analyzer = pipeline.Inline(analysis.NewOrchestrator(pm, dict, cfg.LLMTimeout, logger))
	}

	p := pipeline.New(validator, analyzer, recorder, logger)
	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           api.NewServer(cfg, p, rdb, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("legaldoc api listening",
			zap.String("addr", cfg.APIAddr),
			zap.String("mode", cfg.AnalysisMode),
			zap.String("llm_providers", cfg.LLMProviders),
			zap.String("store", cfg.Store),
			zap.Int("injection_patterns", validator.PatternCount()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newDictionary(cfg config.Config, rdb *redis.Client, logger *zap.Logger) *dictionary.Dictionary {
	opts := dictionary.Options{
		BaseURL: cfg.DictionaryBase,
		Timeout: cfg.DictionaryTimeout,
		TTL:     cfg.DefinitionTTL,
		Logger:  logger,
	}
	if rdb != nil {
		opts.Cache = dictionary.NewRedisCache(rdb)
	}
	return dictionary.New(opts)
}
