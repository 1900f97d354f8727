package domain

import (
	"sync"
	"time"
)

// JobStatus represents the lifecycle state of a lead search job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// IsTerminal returns true if the status represents a final state.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobResults holds the counters accumulated across pipeline stages.
type JobResults struct {
	PostsProcessed    int `json:"posts_processed"`
	CommentsProcessed int `json:"comments_processed"`
	LeadsFound        int `json:"leads_found"`
}

// JobView is a point-in-time copy of a SearchJob, safe to serialize.
type JobView struct {
	JobID     string     `json:"job_id"`
	Status    JobStatus  `json:"status"`
	Progress  int        `json:"progress"`
	Results   JobResults `json:"results"`
	Error     *string    `json:"error"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SearchJob tracks one background lead search.
// Handles are shared between the registry, the running task and pollers,
// so every accessor takes the lock.
type SearchJob struct {
	mu        sync.RWMutex
	id        string
	status    JobStatus
	progress  int
	results   JobResults
	err       *string
	createdAt time.Time
	updatedAt time.Time
}

// NewSearchJob creates a pending job with zeroed progress and counters.
func NewSearchJob(id string) *SearchJob {
	now := time.Now().UTC()
	return &SearchJob{
		id:        id,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the job identifier.
func (j *SearchJob) ID() string {
	return j.id
}

// Status returns the current status.
func (j *SearchJob) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Progress returns the current progress percentage.
func (j *SearchJob) Progress() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

// UpdateStatus sets the status. Completed also forces progress to 100.
// Once terminal, only the same terminal status may be re-applied.
func (j *SearchJob) UpdateStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() && status != j.status {
		return
	}
	j.status = status
	if status == StatusCompleted {
		j.progress = 100
	}
	j.touch()
}

// UpdateProgress accepts value only when it does not move progress backwards,
// except for an explicit reset to 0. Rejected values are a silent no-op.
// Returns whether the value was applied.
func (j *SearchJob) UpdateProgress(value int) bool {
	if value < 0 || value > 100 {
		return false
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() {
		return false
	}
	if value < j.progress && value != 0 {
		return false
	}
	j.progress = value
	j.touch()
	return true
}

// MarkCompleted moves the job to completed with progress 100.
func (j *SearchJob) MarkCompleted() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status == StatusFailed {
		return
	}
	j.status = StatusCompleted
	j.progress = 100
	j.touch()
}

// AddResults increments the result counters. Negative increments are ignored.
func (j *SearchJob) AddResults(posts, comments, leads int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() {
		return
	}
	if posts > 0 {
		j.results.PostsProcessed += posts
	}
	if comments > 0 {
		j.results.CommentsProcessed += comments
	}
	if leads > 0 {
		j.results.LeadsFound += leads
	}
	j.touch()
}

// SetError records msg and moves the job to failed.
// Callers must not fail a job that already completed; the record only
// refuses to revive a terminal job into a different terminal state.
func (j *SearchJob) SetError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() {
		return
	}
	j.err = &msg
	j.status = StatusFailed
	j.touch()
}

// Snapshot returns a consistent copy of the job.
func (j *SearchJob) Snapshot() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()

	view := JobView{
		JobID:     j.id,
		Status:    j.status,
		Progress:  j.progress,
		Results:   j.results,
		CreatedAt: j.createdAt,
		UpdatedAt: j.updatedAt,
	}
	if j.err != nil {
		msg := *j.err
		view.Error = &msg
	}
	return view
}

func (j *SearchJob) touch() {
	j.updatedAt = time.Now().UTC()
}
