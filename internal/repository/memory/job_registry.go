package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

// Ensure JobRegistry implements repository.JobRegistry.
var _ repository.JobRegistry = (*JobRegistry)(nil)

// JobRegistry is the process-wide table of search jobs.
// Records live until removed; there is no expiry.
type JobRegistry struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.SearchJob
	newID func() string
}

// NewJobRegistry creates an empty registry using random UUIDs as identifiers.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs:  make(map[string]*domain.SearchJob),
		newID: uuid.NewString,
	}
}

func (r *JobRegistry) Submit() *domain.SearchJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, taken := r.jobs[id]; !taken {
			break
		}
		id = r.newID()
	}

	job := domain.NewSearchJob(id)
	r.jobs[id] = job
	return job
}

func (r *JobRegistry) Lookup(id string) (*domain.SearchJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

func (r *JobRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
