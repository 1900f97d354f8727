package task

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task is a handle to one background computation.
type Task struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	finished bool
	hooks    []func()
}

// Start runs fn on its own goroutine with a cancellable context derived from parent.
// A panic in fn is recovered and logged; the task still finishes.
func Start(parent context.Context, id string, fn func(ctx context.Context), logger *zap.Logger) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		id:     id,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer t.finish()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Task panic recovered",
					zap.String("task_id", id),
					zap.Any("panic", r),
				)
			}
		}()
		fn(ctx)
	}()

	return t
}

// ID returns the identifier the task was started with.
func (t *Task) ID() string {
	return t.id
}

// Cancel signals the task's context. It does not wait for the task to observe it.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task has returned and its hooks have run.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// OnDone registers fn to run when the task finishes. If the task already
// finished, fn runs immediately on the caller's goroutine.
func (t *Task) OnDone(fn func()) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		fn()
		return
	}
	t.hooks = append(t.hooks, fn)
	t.mu.Unlock()
}

func (t *Task) finish() {
	t.mu.Lock()
	t.finished = true
	hooks := t.hooks
	t.hooks = nil
	t.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	close(t.done)
}
