package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/classifier"
	"github.com/Harsh-BH/Leadly/internal/config"
	handler "github.com/Harsh-BH/Leadly/internal/delivery/http"
	"github.com/Harsh-BH/Leadly/internal/extractor/reddit"
	"github.com/Harsh-BH/Leadly/internal/publisher"
	"github.com/Harsh-BH/Leadly/internal/repository/memory"
	"github.com/Harsh-BH/Leadly/internal/repository/postgres"
	"github.com/Harsh-BH/Leadly/internal/task"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Leadly API Server")

	gin.SetMode(cfg.Server.GinMode)

	// appCtx outlives every request; background searches are bound to it.
	appCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to PostgreSQL
	dbPool, err := postgres.Connect(appCtx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(appCtx).Err(); err != nil {
		logger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Initialize RabbitMQ publisher
	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	// Pipeline collaborators
	extractor := reddit.NewClient(reddit.Config{
		ClientID:          cfg.Reddit.ClientID,
		ClientSecret:      cfg.Reddit.ClientSecret,
		UserAgent:         cfg.Reddit.UserAgent,
		PostLimit:         cfg.Reddit.PostLimit,
		RequestsPerMinute: cfg.Reddit.RequestsPerMinute,
		Timeout:           cfg.Reddit.Timeout,
	}, logger)

	cls, err := classifier.NewOpenAIClassifier(classifier.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize classifier", zap.Error(err))
	}

	// Initialize repositories
	leadRepo := postgres.NewPostgresLeadRepository(dbPool)
	sourceRepo := postgres.NewPostgresSourceRepository(dbPool)
	jobs := memory.NewJobRegistry()
	tasks := task.NewRegistry(logger)

	// Initialize use cases
	finder := usecase.NewFindLeadsUsecase(extractor, cls, leadRepo, sourceRepo, logger)

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("AUTH_API_KEYS is empty, API authentication is disabled")
	}

	router := handler.NewRouter(appCtx, handler.RouterDeps{
		SubmitSearch:  usecase.NewSubmitSearchUsecase(appCtx, jobs, tasks, finder, logger),
		GetSearch:     usecase.NewGetSearchUsecase(jobs, tasks),
		CancelSearch:  usecase.NewCancelSearchUsecase(jobs, tasks, logger),
		ListLeads:     usecase.NewListLeadsUsecase(leadRepo),
		ManageSources: usecase.NewManageSourcesUsecase(sourceRepo, logger),
		TriggerScan:   usecase.NewTriggerScanUsecase(pub, cfg.Scheduler.Query, logger),
		HealthChecks: map[string]handler.HealthCheck{
			"postgres": dbPool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		APIKeys:      cfg.Auth.APIKeys,
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimit:    cfg.Server.RateLimit,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})

	// No WriteTimeout: progress websockets stay open until the job ends.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Cancel in-flight searches and wait for them to unwind.
	stop()
	waitTasks(tasks, time.Until(deadline(shutdownCtx)), logger)

	logger.Info("API server stopped")
}

func deadline(ctx context.Context) time.Time {
	d, ok := ctx.Deadline()
	if !ok {
		return time.Now()
	}
	return d
}

func waitTasks(tasks *task.Registry, timeout time.Duration, logger *zap.Logger) {
	done := make(chan struct{})
	go func() {
		tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Background searches did not stop in time", zap.Int("remaining", tasks.Len()))
	}
}
