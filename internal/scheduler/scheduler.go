package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

// Trigger publishes one scan request. *usecase.TriggerScanUsecase satisfies it.
type Trigger interface {
	Execute(ctx context.Context, query string, subreddits []string) (*domain.ScanRequest, error)
}

// Scheduler publishes a scan request every interval.
type Scheduler struct {
	trigger    Trigger
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger
}

// New creates a Scheduler. With runOnStart a request is published as soon as Run starts.
func New(trigger Trigger, interval time.Duration, runOnStart bool, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		trigger:    trigger,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. Publish failures are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	if s.runOnStart {
		s.fire(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	req, err := s.trigger.Execute(ctx, "", nil)
	if err != nil {
		s.logger.Error("Scheduled scan not published", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled scan published", zap.String("request_id", req.RequestID.String()))
}
