package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesSubmitted counts manual searches accepted by the API.
	SearchesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadly_searches_submitted_total",
			Help: "Total number of lead searches accepted",
		},
	)

	// PipelineRunsTotal counts finished pipeline runs by trigger and outcome.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadly_pipeline_runs_total",
			Help: "Total number of lead pipeline runs",
		},
		[]string{"trigger", "status"},
	)

	// StageDuration tracks how long each pipeline stage takes in seconds.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadly_stage_duration_seconds",
			Help:    "Duration of lead pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"stage"},
	)

	// LeadsFound counts classified leads by category.
	LeadsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadly_leads_found_total",
			Help: "Total number of leads returned by the classifier",
		},
		[]string{"category"},
	)

	// LeadsStored counts leads inserted into the database.
	LeadsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadly_leads_stored_total",
			Help: "Total number of new leads written to the database",
		},
	)

	// TasksInFlight tracks the number of running background searches.
	TasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadly_tasks_in_flight",
			Help: "Number of background search tasks currently registered",
		},
	)

	// WorkersActive tracks the number of scan workers busy with a request.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadly_workers_active",
			Help: "Number of currently active scan worker goroutines",
		},
	)

	// ScansTotal counts scheduled scan requests handled by the worker by outcome.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadly_scans_total",
			Help: "Total number of scheduled scan requests processed",
		},
		[]string{"status"},
	)

	// RedditRequestErrors counts failed Reddit API calls by endpoint.
	RedditRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadly_reddit_request_errors_total",
			Help: "Total number of failed Reddit API requests",
		},
		[]string{"endpoint"},
	)
)
