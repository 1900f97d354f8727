package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/classifier"
	"github.com/Harsh-BH/Leadly/internal/config"
	"github.com/Harsh-BH/Leadly/internal/extractor/reddit"
	"github.com/Harsh-BH/Leadly/internal/repository"
	"github.com/Harsh-BH/Leadly/internal/repository/postgres"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// AppContext holds what every command needs: configuration, a logger and the stores.
type AppContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	Pool    *pgxpool.Pool
	Leads   repository.LeadRepository
	Sources repository.SourceRepository
}

// NewAppContext loads configuration and connects to PostgreSQL.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &AppContext{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Leads:   postgres.NewPostgresLeadRepository(pool),
		Sources: postgres.NewPostgresSourceRepository(pool),
	}, nil
}

// Close releases the database pool and flushes the logger.
func (ac *AppContext) Close() {
	ac.Pool.Close()
	_ = ac.Logger.Sync()
}

// NewFinder wires the Reddit extractor and the classifier into the lead pipeline.
func (ac *AppContext) NewFinder() (*usecase.FindLeadsUsecase, error) {
	cfg := ac.Config

	extractor := reddit.NewClient(reddit.Config{
		ClientID:          cfg.Reddit.ClientID,
		ClientSecret:      cfg.Reddit.ClientSecret,
		UserAgent:         cfg.Reddit.UserAgent,
		PostLimit:         cfg.Reddit.PostLimit,
		RequestsPerMinute: cfg.Reddit.RequestsPerMinute,
		Timeout:           cfg.Reddit.Timeout,
	}, ac.Logger)

	cls, err := classifier.NewOpenAIClassifier(classifier.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	}, ac.Logger)
	if err != nil {
		return nil, err
	}

	return usecase.NewFindLeadsUsecase(extractor, cls, ac.Leads, ac.Sources, ac.Logger), nil
}
