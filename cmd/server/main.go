package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/api"
	"github.com/deprescribing-cds-server/internal/config"
	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/internal/feedback"
	"github.com/deprescribing-cds-server/internal/service"
	"github.com/deprescribing-cds-server/internal/tables"
	"github.com/deprescribing-cds-server/pkg/external"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := setupLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting deprescribing CDS server")

	// Rule tables and name matching
	provider := tables.NewProvider()
	ruleTables := provider.Tables()
	matcher := lexical.SubstringMatcher{}

	// AI collaborator with circuit breaker and two-tier cache.
	// Without an API key the pipeline runs on rule tables alone.
	var classifier domain.DrugClassifier
	var scheduler domain.ScheduleGenerator
	var opts api.ServerOptions

	if cfg.AI.APIKey != "" {
		gemini := external.NewGeminiClient(cfg.AI, logger)
		resilient := external.NewResilientAIClient(gemini, logger)
		opts.Breaker = resilient

		cached, err := service.NewCachedDrugClassifier(
			service.ClassifierCacheConfig{
				MaxMemorySize: cfg.Cache.MemorySize,
				RedisCacheTTL: cfg.Cache.DefaultTTL,
			},
			resilient,
			redisClientFrom(cfg.Cache, logger),
			logger,
		)
		if err != nil {
			logger.WithError(err).Fatal("Failed to build classification cache")
		}
		opts.CacheStats = func() interface{} { return cached.GetCacheStats() }

		if cfg.Analysis.EnableAIFallback {
			classifier = cached
		}
		if cfg.Analysis.EnableAITaperPlans {
			scheduler = resilient
		}
	} else {
		logger.Warn("No AI API key configured, running with rule tables only")
	}

	// Analysis pipeline
	analyzer := service.NewAnalyzerService(
		logger, ruleTables, matcher, classifier, scheduler,
		cfg.Analysis.TransaminaseULN,
	)
	planner := service.NewTaperGenerator(logger, ruleTables, classifier, scheduler)

	// Clinician feedback store
	store, err := feedback.NewSQLiteStore(cfg.Feedback.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feedback store")
	}
	defer store.Close()

	// HTTP server
	server := api.NewServer(configManager, analyzer, planner, ruleTables, store, logger, opts)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// setupLogger builds the application logger from configuration
func setupLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch cfg.Output {
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// redisClientFrom builds the optional Redis client for the second cache
// tier. A bad URL degrades to memory-only caching.
func redisClientFrom(cfg domain.CacheConfig, logger *logrus.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Invalid Redis URL, classification cache runs memory-only")
		return nil
	}
	if cfg.PoolSize > 0 {
		redisOpts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		redisOpts.PoolTimeout = cfg.PoolTimeout
	}
	if cfg.MaxRetries > 0 {
		redisOpts.MaxRetries = cfg.MaxRetries
	}

	return redis.NewClient(redisOpts)
}
