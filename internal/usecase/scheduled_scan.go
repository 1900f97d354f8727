package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/metrics"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

// ScheduledScanUsecase runs a scan request delivered by the broker and reports
// only the leads that were not stored before the run.
type ScheduledScanUsecase struct {
	scanner      LeadScanner
	leads        repository.LeadRepository
	sources      repository.SourceRepository
	idempotent   repository.IdempotencyStore
	defaultQuery string
	logger       *zap.Logger
}

// NewScheduledScanUsecase creates a new ScheduledScanUsecase.
func NewScheduledScanUsecase(
	scanner LeadScanner,
	leads repository.LeadRepository,
	sources repository.SourceRepository,
	idempotent repository.IdempotencyStore,
	defaultQuery string,
	logger *zap.Logger,
) *ScheduledScanUsecase {
	return &ScheduledScanUsecase{
		scanner:      scanner,
		leads:        leads,
		sources:      sources,
		idempotent:   idempotent,
		defaultQuery: defaultQuery,
		logger:       logger,
	}
}

// Execute processes one scan: idempotency check → resolve sources → snapshot
// stored ids → run pipeline → diff. Returns (result, isDuplicate, error).
// A cancelled scan returns an error wrapping domain.ErrScanCancelled.
func (uc *ScheduledScanUsecase) Execute(ctx context.Context, req *domain.ScanRequest) (*domain.ScanResult, bool, error) {
	log := uc.logger.With(zap.String("request_id", req.RequestID.String()))

	acquired, err := uc.idempotent.AcquireLock(ctx, req.RequestID)
	if err != nil {
		if cerr := cancelled(ctx); cerr != nil {
			metrics.ScansTotal.WithLabelValues("cancelled").Inc()
			return nil, false, cerr
		}
		log.Error("Failed to acquire idempotency lock", zap.Error(err))
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}
	if !acquired {
		log.Info("Duplicate scan request detected, skipping")
		metrics.ScansTotal.WithLabelValues("duplicate").Inc()
		return nil, true, nil
	}

	sources := uc.resolveSources(ctx, req.Subreddits, log)

	query := strings.TrimSpace(req.UserQuery)
	if query == "" {
		query = uc.defaultQuery
	}

	existing, err := uc.leads.ExistingIDs(ctx)
	if err != nil {
		uc.clear(ctx, req.RequestID, log)
		if cerr := cancelled(ctx); cerr != nil {
			metrics.ScansTotal.WithLabelValues("cancelled").Inc()
			return nil, false, cerr
		}
		log.Error("Failed to load stored lead ids", zap.Error(err))
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	verdicts, err := uc.scanner.Scan(ctx, query, sources)
	if err != nil {
		uc.clear(ctx, req.RequestID, log)
		if errors.Is(err, domain.ErrScanCancelled) {
			log.Info("Scheduled scan cancelled", zap.Error(err))
			metrics.ScansTotal.WithLabelValues("cancelled").Inc()
		} else {
			log.Error("Scheduled scan failed", zap.Error(err))
			metrics.ScansTotal.WithLabelValues("failed").Inc()
		}
		return nil, false, err
	}

	newLeads := make(map[string]domain.Verdict)
	for id, v := range verdicts {
		if _, seen := existing[id]; !seen {
			newLeads[id] = v
		}
	}

	uc.release(ctx, req.RequestID, log)
	metrics.ScansTotal.WithLabelValues("success").Inc()

	log.Info("Scheduled scan finished",
		zap.Strings("subreddits", sources),
		zap.Int("leads", len(verdicts)),
		zap.Int("new_leads", len(newLeads)),
	)

	return &domain.ScanResult{
		RequestID:  req.RequestID,
		Subreddits: sources,
		Leads:      verdicts,
		NewLeads:   newLeads,
	}, false, nil
}

// cancelled returns an error wrapping domain.ErrScanCancelled once ctx is done.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrScanCancelled, err)
	}
	return nil
}

// release marks the request as done so redeliveries are skipped.
func (uc *ScheduledScanUsecase) release(ctx context.Context, id uuid.UUID, log *zap.Logger) {
	if err := uc.idempotent.ReleaseLock(context.WithoutCancel(ctx), id); err != nil {
		log.Warn("Failed to release idempotency lock", zap.Error(err))
	}
}

// clear drops the lock of an unfinished request so a requeued or replayed
// delivery runs again. It outlives ctx because shutdown cancels it first.
func (uc *ScheduledScanUsecase) clear(ctx context.Context, id uuid.UUID, log *zap.Logger) {
	if err := uc.idempotent.ClearLock(context.WithoutCancel(ctx), id); err != nil {
		log.Warn("Failed to clear idempotency lock", zap.Error(err))
	}
}

// resolveSources prefers the request's own list, then the active sources in
// the database, then the built-in defaults.
func (uc *ScheduledScanUsecase) resolveSources(ctx context.Context, requested []string, log *zap.Logger) []string {
	if len(requested) > 0 {
		if sources, err := ValidateSources(requested); err == nil {
			return sources
		}
		log.Warn("Scan request carried invalid subreddits, falling back", zap.Strings("subreddits", requested))
	}

	active, err := uc.sources.ListActive(ctx)
	if err != nil {
		log.Warn("Failed to list active subreddits, using defaults", zap.Error(err))
	}
	if len(active) > 0 {
		return active
	}
	return append([]string(nil), domain.DefaultSources...)
}
