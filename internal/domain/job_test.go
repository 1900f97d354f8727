package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchJob(t *testing.T) {
	j := NewSearchJob("job-1")

	view := j.Snapshot()
	assert.Equal(t, "job-1", view.JobID)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, 0, view.Progress)
	assert.Equal(t, JobResults{}, view.Results)
	assert.Nil(t, view.Error)
	assert.False(t, view.CreatedAt.IsZero())
	assert.Equal(t, view.CreatedAt, view.UpdatedAt)
}

func TestUpdateProgress_MonotonicWithReset(t *testing.T) {
	j := NewSearchJob("job-1")
	j.UpdateStatus(StatusProcessing)

	steps := []struct {
		value int
		want  int
	}{
		{10, 10},
		{40, 40},
		{25, 40}, // backwards is ignored
		{40, 40},
		{60, 60},
		{0, 0}, // explicit reset
		{5, 5},
		{3, 5},
		{90, 90},
	}

	maxSinceReset := 0
	for i, s := range steps {
		j.UpdateProgress(s.value)
		if s.value == 0 {
			maxSinceReset = 0
		} else if s.value > maxSinceReset {
			maxSinceReset = s.value
		}
		assert.Equalf(t, s.want, j.Progress(), "step %d (value %d)", i, s.value)
		assert.Equalf(t, maxSinceReset, j.Progress(), "step %d should equal max since reset", i)
	}
}

func TestUpdateProgress_OutOfRangeRejected(t *testing.T) {
	j := NewSearchJob("job-1")
	j.UpdateProgress(30)

	assert.False(t, j.UpdateProgress(101))
	assert.False(t, j.UpdateProgress(-1))
	assert.Equal(t, 30, j.Progress())
}

func TestUpdateProgress_RefreshesUpdatedAtOnlyWhenApplied(t *testing.T) {
	j := NewSearchJob("job-1")
	require.True(t, j.UpdateProgress(50))
	before := j.Snapshot().UpdatedAt

	assert.False(t, j.UpdateProgress(20))
	assert.Equal(t, before, j.Snapshot().UpdatedAt)
}

func TestMarkCompleted_ForcesFullProgress(t *testing.T) {
	for _, start := range []int{0, 10, 55, 99} {
		j := NewSearchJob("job-1")
		j.UpdateStatus(StatusProcessing)
		j.UpdateProgress(start)

		j.MarkCompleted()

		assert.Equal(t, StatusCompleted, j.Status())
		assert.Equal(t, 100, j.Progress(), "start progress %d", start)
	}
}

func TestUpdateStatus_CompletedForcesFullProgress(t *testing.T) {
	j := NewSearchJob("job-1")
	j.UpdateStatus(StatusCompleted)

	assert.Equal(t, StatusCompleted, j.Status())
	assert.Equal(t, 100, j.Progress())
}

func TestAddResults_Accumulates(t *testing.T) {
	j := NewSearchJob("job-1")

	j.AddResults(3, 0, 1)
	j.AddResults(2, 0, 4)

	got := j.Snapshot().Results
	assert.Equal(t, 5, got.PostsProcessed)
	assert.Equal(t, 0, got.CommentsProcessed)
	assert.Equal(t, 5, got.LeadsFound)
}

func TestAddResults_IgnoresNegativeIncrements(t *testing.T) {
	j := NewSearchJob("job-1")
	j.AddResults(4, 2, 1)
	j.AddResults(-3, -1, -1)

	got := j.Snapshot().Results
	assert.Equal(t, JobResults{PostsProcessed: 4, CommentsProcessed: 2, LeadsFound: 1}, got)
}

func TestSetError_FailsJob(t *testing.T) {
	j := NewSearchJob("job-1")
	j.UpdateStatus(StatusProcessing)
	j.UpdateProgress(40)

	j.SetError("reddit unavailable")

	view := j.Snapshot()
	assert.Equal(t, StatusFailed, view.Status)
	require.NotNil(t, view.Error)
	assert.Equal(t, "reddit unavailable", *view.Error)
	assert.Equal(t, 40, view.Progress)
}

func TestTerminalJob_IgnoresLateUpdates(t *testing.T) {
	j := NewSearchJob("job-1")
	j.UpdateStatus(StatusProcessing)
	j.MarkCompleted()
	before := j.Snapshot()

	j.UpdateStatus(StatusProcessing)
	j.UpdateProgress(0)
	j.AddResults(1, 1, 1)
	j.SetError("late failure")

	after := j.Snapshot()
	assert.Equal(t, StatusCompleted, after.Status)
	assert.Equal(t, 100, after.Progress)
	assert.Nil(t, after.Error)
	assert.Equal(t, before.Results, after.Results)

	// re-applying the same terminal state is allowed
	j.MarkCompleted()
	assert.Equal(t, StatusCompleted, j.Status())
}

func TestFailedJob_CannotBeCompleted(t *testing.T) {
	j := NewSearchJob("job-1")
	j.SetError("boom")
	j.MarkCompleted()
	j.UpdateStatus(StatusCompleted)

	view := j.Snapshot()
	assert.Equal(t, StatusFailed, view.Status)
	require.NotNil(t, view.Error)
	assert.Equal(t, "boom", *view.Error)
}

func TestSnapshot_IsACopy(t *testing.T) {
	j := NewSearchJob("job-1")
	j.SetError("first")

	view := j.Snapshot()
	*view.Error = "mutated"

	assert.Equal(t, "first", *j.Snapshot().Error)
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
