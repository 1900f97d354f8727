package domain

import "errors"

var (
	// ErrJobNotFound is returned when a search job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoSources is returned when a search names no subreddits.
	ErrNoSources = errors.New("at least one subreddit is required")

	// ErrTooManySources is returned when a search names more subreddits than allowed.
	ErrTooManySources = errors.New("too many subreddits in a single search")

	// ErrInvalidSource is returned when a subreddit name is malformed.
	ErrInvalidSource = errors.New("invalid subreddit name")

	// ErrEmptyQuery is returned when the service description is blank.
	ErrEmptyQuery = errors.New("user query is required")

	// ErrInvalidCategory is returned when a lead category filter is unknown.
	ErrInvalidCategory = errors.New("invalid lead category")

	// ErrPublishFailed is returned when the message broker publish fails.
	ErrPublishFailed = errors.New("failed to publish scan request to message queue")

	// ErrClassificationFailed is returned when the model call did not produce a usable answer.
	ErrClassificationFailed = errors.New("lead classification failed")

	// ErrScanCancelled is returned when a scan stops because its context was cancelled.
	ErrScanCancelled = errors.New("scan cancelled")

	// ErrDatabaseUnavailable is returned when the database is unreachable.
	ErrDatabaseUnavailable = errors.New("database is currently unavailable")
)
