package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

// ManageSourcesUsecase lists, adds and removes the subreddits scheduled scans cover.
type ManageSourcesUsecase struct {
	sources repository.SourceRepository
	logger  *zap.Logger
}

// NewManageSourcesUsecase creates a new ManageSourcesUsecase.
func NewManageSourcesUsecase(sources repository.SourceRepository, logger *zap.Logger) *ManageSourcesUsecase {
	return &ManageSourcesUsecase{sources: sources, logger: logger}
}

// List returns the active subreddits, or the defaults when none are stored.
func (uc *ManageSourcesUsecase) List(ctx context.Context) (*domain.SourcesResponse, error) {
	active, err := uc.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subreddits: %w", err)
	}
	if len(active) == 0 {
		active = append([]string(nil), domain.DefaultSources...)
	}
	return &domain.SourcesResponse{Subreddits: active}, nil
}

// Add validates and stores a subreddit, returning the normalized name.
func (uc *ManageSourcesUsecase) Add(ctx context.Context, name string) (string, error) {
	normalized, err := domain.NormalizeSource(name)
	if err != nil {
		return "", err
	}
	if err := uc.sources.Upsert(ctx, normalized); err != nil {
		return "", fmt.Errorf("add subreddit: %w", err)
	}
	uc.logger.Info("Subreddit added", zap.String("subreddit", normalized))
	return normalized, nil
}

// Remove stops a subreddit from being scanned.
func (uc *ManageSourcesUsecase) Remove(ctx context.Context, name string) error {
	normalized, err := domain.NormalizeSource(name)
	if err != nil {
		return err
	}
	if err := uc.sources.Deactivate(ctx, normalized); err != nil {
		return fmt.Errorf("remove subreddit: %w", err)
	}
	uc.logger.Info("Subreddit removed", zap.String("subreddit", normalized))
	return nil
}
