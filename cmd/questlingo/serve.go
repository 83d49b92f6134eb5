package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/questlingo/backend/docs"
	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/config"
	"github.com/questlingo/backend/internal/handlers"
	"github.com/questlingo/backend/internal/logger"
	"github.com/questlingo/backend/internal/middleware"
	"github.com/questlingo/backend/internal/repositories"
	"github.com/questlingo/backend/internal/services"
	"github.com/questlingo/backend/internal/telemetry"
	"github.com/questlingo/backend/internal/writeback"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(skipMigrations bool) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting QuestLingo API")

	lessons, err := catalog.Load()
	if err != nil {
		logger.Logger.Fatal("Failed to load lesson catalog", zap.Error(err))
	}

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		logger.Logger.Warn("Tracing disabled", zap.Error(err))
	}

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if !skipMigrations {
		if err := runMigrations(db, ""); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db, logger.Logger)
	progressRepo := repositories.NewProgressRepository(db, logger.Logger)

	// Initialize write-back
	recorder := services.NewCompletionService(profileRepo, progressRepo, lessons, logger.Logger)
	dispatcher, closeDispatcher := newDispatcher(cfg, writeback.Targets{
		Progress: progressRepo,
		Profiles: profileRepo,
		Recorder: recorder,
	})

	observer := telemetry.Multi(
		telemetry.NewLogObserver(logger.Logger, cfg.Timeouts.Watchdog, cfg.Timeouts.SlowCompletion),
		telemetry.NewTracerObserver(otel.Tracer("github.com/questlingo/backend/internal/runner")),
	)

	// Initialize services
	store := services.NewProfileStore()
	profileService := services.NewProfileService(profileRepo, store, dispatcher, cfg.Timeouts.RemoteCall, logger.Logger)
	lessonService := services.NewLessonService(lessons, profileService, logger.Logger)
	sessionService := services.NewSessionService(lessons, progressRepo, profileService, store, profileRepo, dispatcher, observer, services.SessionConfig{
		RemoteCallTimeout:    cfg.Timeouts.RemoteCall,
		ProfileUpdateTimeout: cfg.Timeouts.ProfileUpdate,
		CompletionTimeout:    cfg.Timeouts.Completion,
		IdleTTL:              cfg.Timeouts.SessionIdle,
		CompletedTTL:         cfg.Timeouts.SessionRetain,
	}, logger.Logger)

	// Setup router
	r := newRouter(routerDeps{
		logger:         logger.Logger,
		verifier:       middleware.NewTokenVerifier(cfg.JWT.Secret),
		allowedOrigins: cfg.CORS.AllowedOrigins,
		ratePerMinute:  cfg.Server.RateLimitPerMinute,
		swaggerURL:     swaggerURL(cfg.Server.Port),
		health:         handlers.NewHealthHandler(map[string]handlers.Pinger{"database": db}, logger.Logger),
		lessons:        handlers.NewLessonHandler(lessonService, logger.Logger),
		sessions:       handlers.NewSessionHandler(sessionService, logger.Logger),
		profile:        handlers.NewProfileHandler(profileService, sessionService, logger.Logger),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("sync_mode", string(cfg.Sync.Mode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	sessionService.Close()
	if err := closeDispatcher(ctx); err != nil {
		logger.Logger.Warn("Pending write-backs were not delivered", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
	return nil
}

// newDispatcher builds the write-back dispatcher for the configured sync mode
func newDispatcher(cfg *config.Config, targets writeback.Targets) (writeback.Dispatcher, func(context.Context) error) {
	if cfg.Sync.Mode == config.SyncAsynq {
		client := asynq.NewClient(redisClientOpt(cfg))
		d := writeback.NewAsynqDispatcher(client, cfg.Sync.MaxAttempts, cfg.Sync.AttemptTimeout, logger.Logger)
		return d, func(context.Context) error {
			d.Wait()
			return client.Close()
		}
	}

	d := writeback.NewLocalDispatcher(targets, writeback.LocalConfig{
		Workers:        cfg.Sync.Workers,
		QueueSize:      cfg.Sync.QueueSize,
		MaxAttempts:    cfg.Sync.MaxAttempts,
		AttemptTimeout: cfg.Sync.AttemptTimeout,
		Backoff:        200 * time.Millisecond,
	}, logger.Logger)
	return d, d.Close
}

func redisClientOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}
