package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

type countingTrigger struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingTrigger) Execute(ctx context.Context, query string, subreddits []string) (*domain.ScanRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &domain.ScanRequest{RequestID: uuid.New()}, nil
}

func (c *countingTrigger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, s.Run(ctx))
}

func TestScheduler_PublishesOnStartAndTick(t *testing.T) {
	trig := &countingTrigger{}
	runFor(t, New(trig, 20*time.Millisecond, true, zap.NewNop()), 110*time.Millisecond)

	assert.GreaterOrEqual(t, trig.count(), 3)
}

func TestScheduler_NoStartRun(t *testing.T) {
	trig := &countingTrigger{}
	runFor(t, New(trig, time.Hour, false, zap.NewNop()), 30*time.Millisecond)

	assert.Equal(t, 0, trig.count())
}

func TestScheduler_KeepsGoingAfterFailure(t *testing.T) {
	trig := &countingTrigger{err: errors.New("broker down")}
	runFor(t, New(trig, 10*time.Millisecond, true, zap.NewNop()), 60*time.Millisecond)

	assert.Greater(t, trig.count(), 1)
}
