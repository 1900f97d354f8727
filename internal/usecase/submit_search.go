package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/metrics"
	"github.com/Harsh-BH/Leadly/internal/repository"
	"github.com/Harsh-BH/Leadly/internal/task"
)

const maxSourcesPerSearch = 25

// SubmitSearchUsecase validates a search request and starts it in the background.
type SubmitSearchUsecase struct {
	appCtx context.Context
	jobs   repository.JobRegistry
	tasks  *task.Registry
	finder LeadFinder
	logger *zap.Logger
}

// NewSubmitSearchUsecase creates a new SubmitSearchUsecase.
// appCtx bounds every search it starts; it should be cancelled only at shutdown.
func NewSubmitSearchUsecase(
	appCtx context.Context,
	jobs repository.JobRegistry,
	tasks *task.Registry,
	finder LeadFinder,
	logger *zap.Logger,
) *SubmitSearchUsecase {
	return &SubmitSearchUsecase{
		appCtx: appCtx,
		jobs:   jobs,
		tasks:  tasks,
		finder: finder,
		logger: logger,
	}
}

// Execute validates req, registers a job and schedules the pipeline.
// The request context is only used for validation; the search outlives it.
func (uc *SubmitSearchUsecase) Execute(_ context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	query := strings.TrimSpace(req.UserQuery)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	sources, err := ValidateSources(req.Subreddits)
	if err != nil {
		return nil, err
	}

	job := uc.jobs.Submit()
	uc.tasks.Go(uc.appCtx, job.ID(), func(ctx context.Context) {
		uc.finder.Run(ctx, job, query, sources)
	})
	metrics.SearchesSubmitted.Inc()

	uc.logger.Info("Lead search submitted",
		zap.String("job_id", job.ID()),
		zap.Strings("subreddits", sources),
	)

	return &domain.SearchResponse{
		Message: "Lead search started",
		JobID:   job.ID(),
	}, nil
}

// ValidateSources normalizes subreddit names and drops duplicates, keeping order.
func ValidateSources(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoSources
	}
	if len(names) > maxSourcesPerSearch {
		return nil, domain.ErrTooManySources
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		normalized, err := domain.NormalizeSource(name)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}
