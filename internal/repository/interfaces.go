package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

// JobRegistry owns the in-memory search job records for the process lifetime.
// Implementations must be safe for concurrent use.
type JobRegistry interface {
	// Submit creates, stores and returns a new pending job with a fresh identifier.
	Submit() *domain.SearchJob

	// Lookup returns the job handle, or false if the identifier is unknown.
	Lookup(id string) (*domain.SearchJob, bool)

	// Remove forgets a job. Unknown identifiers are ignored.
	Remove(id string)

	// Len returns the number of tracked jobs.
	Len() int
}

// LeadRepository persists classified leads.
type LeadRepository interface {
	// UpsertLeads stores leads under category, skipping identifiers already stored.
	// Returns the number of rows inserted.
	UpsertLeads(ctx context.Context, leads []*domain.Lead, category domain.Category) (int, error)

	// ExistingIDs returns the item identifiers already stored.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)

	// List returns a page of leads, newest first.
	List(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error)

	// Count returns how many leads match the filter, ignoring limit and offset.
	Count(ctx context.Context, filter domain.LeadFilter) (int, error)

	// DeleteAll removes every stored lead and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// SourceRepository persists the subreddits that have been or should be scanned.
type SourceRepository interface {
	// Upsert records a subreddit as active. Duplicates are ignored.
	Upsert(ctx context.Context, name string) error

	// ListActive returns the active subreddit names.
	ListActive(ctx context.Context) ([]string, error)

	// Deactivate stops a subreddit from being scanned by scheduled runs.
	Deactivate(ctx context.Context, name string) error

	// DeleteAll removes every stored subreddit and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// IdempotencyStore defines the interface for distributed deduplication locks.
type IdempotencyStore interface {
	// AcquireLock attempts to acquire an exclusive processing lock for a scan request.
	// Returns true if the lock was acquired (first time), false if already locked (duplicate).
	AcquireLock(ctx context.Context, requestID uuid.UUID) (bool, error)

	// ReleaseLock releases the processing lock with a TTL for eventual cleanup.
	ReleaseLock(ctx context.Context, requestID uuid.UUID) error

	// ClearLock removes the lock so a redelivery of the request runs again.
	ClearLock(ctx context.Context, requestID uuid.UUID) error
}

// ProgressReporter receives progress updates from long-running collaborators.
// *domain.SearchJob satisfies it.
type ProgressReporter interface {
	UpdateProgress(value int) bool
}

// Extractor fetches posts and their top-level comments from the given subreddits.
// progress may be nil.
type Extractor interface {
	Extract(ctx context.Context, sources []string, progress ProgressReporter) ([]domain.Post, []domain.Comment, error)
}

// Classifier asks the language model which items are leads for query.
// Model or transport failures are reported as a domain.ClassificationError variant;
// the returned error is reserved for cancellation.
type Classifier interface {
	Classify(ctx context.Context, query string, posts []domain.Post, comments []domain.Comment) (domain.Classification, error)
}
