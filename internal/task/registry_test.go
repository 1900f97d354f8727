package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not finish in time")
	}
}

func TestRegistry_RemovesEntryOnSuccess(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	release := make(chan struct{})

	task := reg.Go(context.Background(), "job-1", func(ctx context.Context) {
		<-release
	})

	got, ok := reg.Get("job-1")
	require.True(t, ok)
	assert.Same(t, task, got)

	close(release)
	waitDone(t, task)

	_, ok = reg.Get("job-1")
	assert.False(t, ok, "entry should be removed without an explicit Remove")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_RemovesEntryOnPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	task := reg.Go(context.Background(), "job-1", func(ctx context.Context) {
		panic(errors.New("stage exploded"))
	})
	waitDone(t, task)

	_, ok := reg.Get("job-1")
	assert.False(t, ok)
}

func TestRegistry_AddAfterTaskFinished(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	task := Start(context.Background(), "job-1", func(ctx context.Context) {}, zap.NewNop())
	waitDone(t, task)

	reg.Add("job-1", task)

	_, ok := reg.Get("job-1")
	assert.False(t, ok)
}

func TestRegistry_CancelSignalsAndRemovesImmediately(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	observed := make(chan struct{})
	proceed := make(chan struct{})

	task := reg.Go(context.Background(), "job-1", func(ctx context.Context) {
		<-ctx.Done()
		close(observed)
		<-proceed
	})

	require.True(t, reg.Cancel("job-1"))

	// the entry is gone before the task has acknowledged the cancellation
	_, ok := reg.Get("job-1")
	assert.False(t, ok)

	select {
	case <-observed:
	case <-time.After(2 * time.Second):
		t.Fatal("task never observed cancellation")
	}
	close(proceed)
	waitDone(t, task)
}

func TestRegistry_CancelUnknown(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	assert.False(t, reg.Cancel("missing"))
}

func TestRegistry_StaleHookDoesNotRemoveNewerTask(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	releaseOld := make(chan struct{})
	releaseNew := make(chan struct{})

	oldTask := Start(context.Background(), "job-1", func(ctx context.Context) { <-releaseOld }, zap.NewNop())
	reg.Add("job-1", oldTask)

	newTask := Start(context.Background(), "job-1", func(ctx context.Context) { <-releaseNew }, zap.NewNop())
	reg.Add("job-1", newTask)

	close(releaseOld)
	waitDone(t, oldTask)

	got, ok := reg.Get("job-1")
	require.True(t, ok)
	assert.Same(t, newTask, got)

	close(releaseNew)
	waitDone(t, newTask)
	_, ok = reg.Get("job-1")
	assert.False(t, ok)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	release := make(chan struct{})
	task := reg.Go(context.Background(), "job-1", func(ctx context.Context) { <-release })

	reg.Remove("job-1")
	reg.Remove("job-1")
	_, ok := reg.Get("job-1")
	assert.False(t, ok)

	close(release)
	waitDone(t, task)
}

func TestRegistry_WaitBlocksUntilTasksFinish(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		reg.Go(ctx, id, func(ctx context.Context) { <-ctx.Done() })
	}
	assert.Equal(t, 3, reg.Len())

	waited := make(chan struct{})
	go func() {
		reg.Wait()
		close(waited)
	}()

	cancel()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after parent cancellation")
	}
	assert.Equal(t, 0, reg.Len())
}
