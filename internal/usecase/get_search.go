package usecase

import (
	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
	"github.com/Harsh-BH/Leadly/internal/task"
)

// GetSearchUsecase retrieves the current state of a search job.
type GetSearchUsecase struct {
	jobs  repository.JobRegistry
	tasks *task.Registry
}

// NewGetSearchUsecase creates a new GetSearchUsecase.
func NewGetSearchUsecase(jobs repository.JobRegistry, tasks *task.Registry) *GetSearchUsecase {
	return &GetSearchUsecase{jobs: jobs, tasks: tasks}
}

// Execute returns a snapshot of the job, or domain.ErrJobNotFound.
func (uc *GetSearchUsecase) Execute(id string) (domain.JobView, error) {
	job, ok := uc.jobs.Lookup(id)
	if !ok {
		return domain.JobView{}, domain.ErrJobNotFound
	}
	return job.Snapshot(), nil
}

// Running reports whether a pipeline task for id is still registered.
// A cancelled job keeps its last status but is no longer running.
func (uc *GetSearchUsecase) Running(id string) bool {
	_, ok := uc.tasks.Get(id)
	return ok
}
