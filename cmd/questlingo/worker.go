package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/config"
	"github.com/questlingo/backend/internal/logger"
	"github.com/questlingo/backend/internal/repositories"
	"github.com/questlingo/backend/internal/services"
	"github.com/questlingo/backend/internal/writeback"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued write-backs from Redis to the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("Invalid config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting QuestLingo write-back worker")

	lessons, err := catalog.Load()
	if err != nil {
		logger.Logger.Fatal("Failed to load lesson catalog", zap.Error(err))
	}

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Test Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	profileRepo := repositories.NewProfileRepository(db, logger.Logger)
	progressRepo := repositories.NewProgressRepository(db, logger.Logger)
	handler := writeback.NewTaskHandler(writeback.Targets{
		Progress: progressRepo,
		Profiles: profileRepo,
		Recorder: services.NewCompletionService(profileRepo, progressRepo, lessons, logger.Logger),
	}, logger.Logger)

	srv := asynq.NewServer(redisClientOpt(cfg), asynq.Config{
		Concurrency: cfg.Sync.Workers,
		Queues: map[string]int{
			writeback.QueueName: 1,
		},
	})

	mux := asynq.NewServeMux()
	handler.Register(mux)

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started", zap.String("queue", writeback.QueueName))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
	return nil
}
