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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harsh-BH/Leadly/internal/classifier"
	"github.com/Harsh-BH/Leadly/internal/config"
	amqpdelivery "github.com/Harsh-BH/Leadly/internal/delivery/amqp"
	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/extractor/reddit"
	"github.com/Harsh-BH/Leadly/internal/pool"
	"github.com/Harsh-BH/Leadly/internal/publisher"
	"github.com/Harsh-BH/Leadly/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/Leadly/internal/repository/redis"
	"github.com/Harsh-BH/Leadly/internal/scheduler"
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

	logger.Info("Starting Leadly Scan Worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Connect to PostgreSQL
	dbPool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Invalid Redis URL", zap.Error(err))
	}
	redisClient := goredis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize repositories
	leadRepo := postgres.NewPostgresLeadRepository(dbPool)
	sourceRepo := postgres.NewPostgresSourceRepository(dbPool)
	locks := redisrepo.NewScanLockStore(redisClient)

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

	// Initialize use cases
	finder := usecase.NewFindLeadsUsecase(extractor, cls, leadRepo, sourceRepo, logger)
	scanUC := usecase.NewScheduledScanUsecase(finder, leadRepo, sourceRepo, locks, cfg.Scheduler.Query, logger)

	// Create buffered scan channel
	scans := make(chan *domain.ScanMessage, cfg.Worker.PoolSize*2)

	consumer, err := amqpdelivery.NewConsumer(cfg.RabbitMQ.URL, scans, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AMQP consumer", zap.Error(err))
	}
	defer consumer.Close()
	logger.Info("Connected to RabbitMQ")

	workerPool := pool.NewWorkerPool(cfg.Worker.PoolSize, scans, scanUC, logger)
	workerPool.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Start(gctx)
	})

	if cfg.Scheduler.Enabled {
		pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
		}
		defer pub.Close()

		trigger := usecase.NewTriggerScanUsecase(pub, cfg.Scheduler.Query, logger)
		sched := scheduler.New(trigger, cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart, logger)
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	// Prometheus metrics server
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info("Metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker component failed", zap.Error(err))
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Wait for workers to finish in-flight scans
	workerPool.Stop()

	logger.Info("Worker stopped")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
