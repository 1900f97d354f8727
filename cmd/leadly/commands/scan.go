package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

const progressInterval = 500 * time.Millisecond

// ScanAction runs the lead pipeline in the foreground with a job record and prints its progress.
func ScanAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	sources := cmd.StringSlice("source")
	if len(sources) == 0 {
		listed, err := usecase.NewManageSourcesUsecase(app.Sources, app.Logger).List(ctx)
		if err != nil {
			return err
		}
		sources = listed.Subreddits
	}
	if sources, err = usecase.ValidateSources(sources); err != nil {
		return err
	}

	finder, err := app.NewFinder()
	if err != nil {
		return err
	}

	job := domain.NewSearchJob(uuid.NewString())
	fmt.Fprintf(out, "Scanning %v (job %s)\n", sources, job.ID())

	done := make(chan map[string]domain.Verdict, 1)
	go func() {
		done <- finder.Run(ctx, job, cmd.String("query"), sources)
	}()

	verdicts := watchJob(out, job, done, progressInterval)

	view := job.Snapshot()
	if view.Status == domain.StatusFailed && view.Error != nil {
		return fmt.Errorf("scan failed: %s", *view.Error)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	printVerdicts(out, verdicts)
	return nil
}

// watchJob prints a line whenever the job's status or progress changes and
// returns the verdicts once the run finishes.
func watchJob(w io.Writer, job *domain.SearchJob, done <-chan map[string]domain.Verdict, interval time.Duration) map[string]domain.Verdict {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last domain.JobView
	report := func() {
		view := job.Snapshot()
		if view.Status == last.Status && view.Progress == last.Progress {
			return
		}
		last = view
		fmt.Fprintf(w, "[%3d%%] %-10s posts=%d comments=%d leads=%d\n",
			view.Progress, view.Status,
			view.Results.PostsProcessed, view.Results.CommentsProcessed, view.Results.LeadsFound)
	}

	for {
		select {
		case verdicts := <-done:
			report()
			return verdicts
		case <-ticker.C:
			report()
		}
	}
}
