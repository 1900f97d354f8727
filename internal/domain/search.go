package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchRequest represents an incoming manual lead search from the API.
type SearchRequest struct {
	Subreddits []string `json:"subreddits" binding:"required"`
	UserQuery  string   `json:"user_query" binding:"required"`
}

// SearchResponse is returned after a search has been scheduled.
type SearchResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// ScanRequest is a scheduled scan travelling through the message broker.
type ScanRequest struct {
	RequestID   uuid.UUID `json:"request_id"`
	UserQuery   string    `json:"user_query"`
	Subreddits  []string  `json:"subreddits,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// ScanMessage wraps a ScanRequest with the broker acknowledgement callbacks.
type ScanMessage struct {
	Request *ScanRequest
	Ack     func() error
	Nack    func(requeue bool) error
}

// ScanResult summarizes one scheduled scan.
type ScanResult struct {
	RequestID  uuid.UUID
	Subreddits []string
	Leads      map[string]Verdict
	NewLeads   map[string]Verdict
}

// SourcesResponse lists the monitored subreddits.
type SourcesResponse struct {
	Subreddits []string `json:"subreddits"`
}

// AddSourceRequest adds a subreddit to the monitored set.
type AddSourceRequest struct {
	Subreddit string `json:"subreddit" binding:"required"`
}

// ScheduleRunRequest triggers a scheduled scan on demand. Both fields are optional.
type ScheduleRunRequest struct {
	UserQuery  string   `json:"user_query"`
	Subreddits []string `json:"subreddits"`
}

// ScheduleRunResponse is returned once the scan request has been published.
type ScheduleRunResponse struct {
	Message   string    `json:"message"`
	RequestID uuid.UUID `json:"request_id"`
}

// DefaultSources are scanned when no sources are configured.
var DefaultSources = []string{"forhire", "slavelabour", "freelance"}

var sourceNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

// NormalizeSource trims an optional "r/" prefix and validates the subreddit name.
func NormalizeSource(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(strings.TrimPrefix(name, "/"), "r/")
	if !sourceNamePattern.MatchString(name) {
		return "", ErrInvalidSource
	}
	return name, nil
}
