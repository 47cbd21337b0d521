package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/davidrmz/cotejo/internal/analysis"
	"github.com/davidrmz/cotejo/internal/api"
	"github.com/davidrmz/cotejo/internal/config"
	"github.com/davidrmz/cotejo/internal/configs/env"
	"github.com/davidrmz/cotejo/internal/engine"
	"github.com/davidrmz/cotejo/internal/infra/mongo"
	redisInfra "github.com/davidrmz/cotejo/internal/infra/redis"
	"github.com/davidrmz/cotejo/internal/logger"
	"github.com/davidrmz/cotejo/internal/metrics"
	"github.com/davidrmz/cotejo/internal/repository"
	"github.com/davidrmz/cotejo/internal/stream"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting cotejo server")

	metrics.InitPrometheus()
	log.Info().Msg("Prometheus metrics initialized")

	// Metrics server on its own port
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	// Repositories
	mongoRepo := repository.NewMongoRepository(mongoClient)
	comparisonsRepo := repository.NewComparisonsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)
	catalogRepo := repository.NewCatalogRepository(mongoRepo)
	usersRepo := repository.NewUsersRepository(mongoRepo)

	// Analysis engine client and pipeline
	engineClient := engine.NewClient(cfg.EngineBaseURL, cfg.EngineAPIKey)
	status := analysis.NewStatus(redisClient)
	pipeline := analysis.NewPipeline(engineClient, comparisonsRepo, resultsRepo, catalogRepo, status)

	// Stream publisher for group runs
	publisher := stream.NewPublisher(redisClient.Client, cfg.RedisStreamKey)

	handler := api.NewHandler(cfg, pipeline, comparisonsRepo, resultsRepo, catalogRepo, usersRepo, status, publisher)
	router := api.SetupRoutes(cfg, handler)

	// Consumer, retry handler and worker pool only run when this
	// instance processes the queue; API-only instances skip them
	if cfg.ConsumerEnabled {
		retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

		workerPool := analysis.NewWorkerPool(ctx, cfg.MaxConcurrentAnalysis)
		defer workerPool.Close()

		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "unknown"
		}
		consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
		consumer := stream.NewConsumer(
			redisClient.Client,
			cfg.RedisStreamKey,
			cfg.RedisConsumerGroup,
			consumerName,
			pipeline,
			workerPool,
			retryHandler,
			cfg.AnalysisTimeout,
			cfg.StreamRetentionDuration,
		)
		log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

		consumerCtx, consumerCancel := context.WithCancel(ctx)
		defer consumerCancel()
		go func() {
			if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("Redis consumer error")
			}
		}()
		log.Info().Msg("Redis consumer started")
	} else {
		log.Info().Msg("Redis consumer disabled, serving API only")
	}

	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
