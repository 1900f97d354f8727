package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/publisher"
)

// TriggerScanUsecase publishes a scan request for the worker to pick up.
type TriggerScanUsecase struct {
	publisher    publisher.Publisher
	defaultQuery string
	logger       *zap.Logger
}

// NewTriggerScanUsecase creates a new TriggerScanUsecase. defaultQuery is used
// when a trigger does not carry its own service description.
func NewTriggerScanUsecase(pub publisher.Publisher, defaultQuery string, logger *zap.Logger) *TriggerScanUsecase {
	return &TriggerScanUsecase{
		publisher:    pub,
		defaultQuery: defaultQuery,
		logger:       logger,
	}
}

// Execute builds and publishes a ScanRequest. Empty subreddits let the worker
// pick the active sources at run time.
func (uc *TriggerScanUsecase) Execute(ctx context.Context, query string, subreddits []string) (*domain.ScanRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = uc.defaultQuery
	}
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	var sources []string
	if len(subreddits) > 0 {
		var err error
		if sources, err = ValidateSources(subreddits); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}

	req := &domain.ScanRequest{
		RequestID:   id,
		UserQuery:   query,
		Subreddits:  sources,
		RequestedAt: time.Now().UTC(),
	}

	if err := uc.publisher.Publish(ctx, req); err != nil {
		uc.logger.Error("Failed to publish scan request", zap.Error(err), zap.String("request_id", id.String()))
		return nil, domain.ErrPublishFailed
	}

	uc.logger.Info("Scan request published",
		zap.String("request_id", id.String()),
		zap.Strings("subreddits", sources),
	)
	return req, nil
}
