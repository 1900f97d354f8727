package task

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/metrics"
)

// Registry tracks in-flight background tasks by job identifier.
// Entries are dropped automatically when their task finishes.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewRegistry creates an empty task registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		tasks:  make(map[string]*Task),
		logger: logger,
	}
}

// Go starts fn as a task owned by the registry and registers it under id.
func (r *Registry) Go(parent context.Context, id string, fn func(ctx context.Context)) *Task {
	r.wg.Add(1)
	t := Start(parent, id, fn, r.logger)
	r.Add(id, t)
	t.OnDone(r.wg.Done)
	return t
}

// Add records t under id and arranges for the entry to be removed when t finishes.
func (r *Registry) Add(id string, t *Task) {
	r.mu.Lock()
	r.tasks[id] = t
	metrics.TasksInFlight.Set(float64(len(r.tasks)))
	r.mu.Unlock()

	t.OnDone(func() {
		r.removeIfSame(id, t)
	})
}

// Remove forgets the task registered under id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	metrics.TasksInFlight.Set(float64(len(r.tasks)))
}

// Get returns the task registered under id.
func (r *Registry) Get(id string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Cancel requests cancellation of the task under id and removes it immediately.
// Returns false if no task was registered.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if ok {
		delete(r.tasks, id)
		metrics.TasksInFlight.Set(float64(len(r.tasks)))
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	t.Cancel()
	r.logger.Info("Task cancellation requested", zap.String("job_id", id))
	return true
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Wait blocks until every task started with Go has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) removeIfSame(id string, t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.tasks[id]; ok && cur == t {
		delete(r.tasks, id)
		metrics.TasksInFlight.Set(float64(len(r.tasks)))
	}
}
