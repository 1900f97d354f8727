package usecase

import (
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
	"github.com/Harsh-BH/Leadly/internal/task"
)

// CancelSearchUsecase stops a running search and optionally forgets its record.
type CancelSearchUsecase struct {
	jobs   repository.JobRegistry
	tasks  *task.Registry
	logger *zap.Logger
}

// NewCancelSearchUsecase creates a new CancelSearchUsecase.
func NewCancelSearchUsecase(jobs repository.JobRegistry, tasks *task.Registry, logger *zap.Logger) *CancelSearchUsecase {
	return &CancelSearchUsecase{jobs: jobs, tasks: tasks, logger: logger}
}

// Execute requests cancellation of the task for id without waiting for it.
// With purge the job record is removed as well. A finished job can still be purged.
func (uc *CancelSearchUsecase) Execute(id string, purge bool) error {
	_, known := uc.jobs.Lookup(id)
	cancelled := uc.tasks.Cancel(id)
	if !known && !cancelled {
		return domain.ErrJobNotFound
	}

	if purge {
		uc.jobs.Remove(id)
	}

	uc.logger.Info("Lead search cancel requested",
		zap.String("job_id", id),
		zap.Bool("was_running", cancelled),
		zap.Bool("purged", purge),
	)
	return nil
}
