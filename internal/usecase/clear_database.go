package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/repository"
)

// ClearDatabaseUsecase wipes stored leads and subreddits.
type ClearDatabaseUsecase struct {
	leads   repository.LeadRepository
	sources repository.SourceRepository
	logger  *zap.Logger
}

// NewClearDatabaseUsecase creates a new ClearDatabaseUsecase.
func NewClearDatabaseUsecase(leads repository.LeadRepository, sources repository.SourceRepository, logger *zap.Logger) *ClearDatabaseUsecase {
	return &ClearDatabaseUsecase{leads: leads, sources: sources, logger: logger}
}

// Execute deletes every lead and subreddit and reports how many rows went.
func (uc *ClearDatabaseUsecase) Execute(ctx context.Context) (leads, sources int64, err error) {
	if leads, err = uc.leads.DeleteAll(ctx); err != nil {
		return 0, 0, fmt.Errorf("clear leads: %w", err)
	}
	if sources, err = uc.sources.DeleteAll(ctx); err != nil {
		return leads, 0, fmt.Errorf("clear subreddits: %w", err)
	}
	uc.logger.Warn("Database cleared", zap.Int64("leads", leads), zap.Int64("subreddits", sources))
	return leads, sources, nil
}
