package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository/memory"
	"github.com/Harsh-BH/Leadly/internal/task"
)

// fakeFinder runs runFn (or scanFn for job-less runs) as the pipeline.
type fakeFinder struct {
	runFn  func(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict
	scanFn func(ctx context.Context, query string, sources []string) (map[string]domain.Verdict, error)
}

func (f *fakeFinder) Scan(ctx context.Context, query string, sources []string) (map[string]domain.Verdict, error) {
	if f.scanFn != nil {
		return f.scanFn(ctx, query, sources)
	}
	return map[string]domain.Verdict{}, nil
}

func (f *fakeFinder) Run(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
	if f.runFn != nil {
		return f.runFn(ctx, job, query, sources)
	}
	job.MarkCompleted()
	return map[string]domain.Verdict{}
}

type searchFixture struct {
	jobs   *memory.JobRegistry
	tasks  *task.Registry
	finder *fakeFinder
	submit *SubmitSearchUsecase
	get    *GetSearchUsecase
	cancel *CancelSearchUsecase
}

func newSearchFixture(appCtx context.Context) *searchFixture {
	logger := zap.NewNop()
	f := &searchFixture{
		jobs:   memory.NewJobRegistry(),
		tasks:  task.NewRegistry(logger),
		finder: &fakeFinder{},
	}
	f.submit = NewSubmitSearchUsecase(appCtx, f.jobs, f.tasks, f.finder, logger)
	f.get = NewGetSearchUsecase(f.jobs, f.tasks)
	f.cancel = NewCancelSearchUsecase(f.jobs, f.tasks, logger)
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubmitSearch_Success(t *testing.T) {
	f := newSearchFixture(context.Background())
	var gotQuery string
	var gotSources []string
	done := make(chan struct{})
	f.finder.runFn = func(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
		gotQuery, gotSources = query, sources
		job.MarkCompleted()
		close(done)
		return nil
	}

	resp, err := f.submit.Execute(context.Background(), &domain.SearchRequest{
		Subreddits: []string{"r/forhire", "slavelabour", "forhire"},
		UserQuery:  "  video editing  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.JobID == "" || resp.Message == "" {
		t.Fatalf("expected job id and message, got %+v", resp)
	}

	<-done
	if gotQuery != "video editing" {
		t.Errorf("expected trimmed query, got %q", gotQuery)
	}
	if strings.Join(gotSources, ",") != "forhire,slavelabour" {
		t.Errorf("expected normalized unique sources, got %v", gotSources)
	}

	view, err := f.get.Execute(resp.JobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", view.Status)
	}
	waitFor(t, func() bool { return f.tasks.Len() == 0 })
}

func TestSubmitSearch_Validation(t *testing.T) {
	tooMany := make([]string, maxSourcesPerSearch+1)
	for i := range tooMany {
		tooMany[i] = "sub_" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	tests := []struct {
		name string
		req  *domain.SearchRequest
		want error
	}{
		{"no sources", &domain.SearchRequest{UserQuery: "q"}, domain.ErrNoSources},
		{"blank query", &domain.SearchRequest{Subreddits: []string{"forhire"}, UserQuery: "   "}, domain.ErrEmptyQuery},
		{"bad name", &domain.SearchRequest{Subreddits: []string{"for hire"}, UserQuery: "q"}, domain.ErrInvalidSource},
		{"too many", &domain.SearchRequest{Subreddits: tooMany, UserQuery: "q"}, domain.ErrTooManySources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSearchFixture(context.Background())
			_, err := f.submit.Execute(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if f.jobs.Len() != 0 {
				t.Errorf("no job should be registered on validation failure")
			}
		})
	}
}

func TestSubmitSearch_OutlivesRequestContext(t *testing.T) {
	f := newSearchFixture(context.Background())
	release := make(chan struct{})
	ctxErr := make(chan error, 1)
	f.finder.runFn = func(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
		<-release
		ctxErr <- ctx.Err()
		return nil
	}

	reqCtx, cancelReq := context.WithCancel(context.Background())
	_, err := f.submit.Execute(reqCtx, &domain.SearchRequest{Subreddits: []string{"forhire"}, UserQuery: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancelReq()
	close(release)

	if err := <-ctxErr; err != nil {
		t.Errorf("task context should not follow the request context, got %v", err)
	}
}

func TestGetSearch_NotFound(t *testing.T) {
	f := newSearchFixture(context.Background())
	_, err := f.get.Execute("missing")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestCancelSearch_StopsRunningTask(t *testing.T) {
	f := newSearchFixture(context.Background())
	started := make(chan struct{})
	stopped := make(chan struct{})
	f.finder.runFn = func(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
		job.UpdateStatus(domain.StatusProcessing)
		close(started)
		<-ctx.Done()
		close(stopped)
		return nil
	}

	resp, err := f.submit.Execute(context.Background(), &domain.SearchRequest{Subreddits: []string{"forhire"}, UserQuery: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-started

	if err := f.cancel.Execute(resp.JobID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.tasks.Get(resp.JobID); ok {
		t.Error("task entry should be removed immediately")
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not observe cancellation")
	}

	// the record is kept in its last state
	view, err := f.get.Execute(resp.JobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != domain.StatusProcessing {
		t.Errorf("expected processing, got %s", view.Status)
	}
}

func TestCancelSearch_Purge(t *testing.T) {
	f := newSearchFixture(context.Background())
	resp, err := f.submit.Execute(context.Background(), &domain.SearchRequest{Subreddits: []string{"forhire"}, UserQuery: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, func() bool { return f.tasks.Len() == 0 })

	if err := f.cancel.Execute(resp.JobID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.get.Execute(resp.JobID); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected purged job to be gone, got %v", err)
	}
}

func TestCancelSearch_Unknown(t *testing.T) {
	f := newSearchFixture(context.Background())
	if err := f.cancel.Execute("missing", true); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestSubmitSearch_ShutdownCancelsTasks(t *testing.T) {
	appCtx, shutdown := context.WithCancel(context.Background())
	f := newSearchFixture(appCtx)
	f.finder.runFn = func(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
		<-ctx.Done()
		return nil
	}

	for i := 0; i < 3; i++ {
		if _, err := f.submit.Execute(context.Background(), &domain.SearchRequest{Subreddits: []string{"forhire"}, UserQuery: "q"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	shutdown()
	f.tasks.Wait()
	if f.tasks.Len() != 0 {
		t.Errorf("expected no tasks after shutdown, got %d", f.tasks.Len())
	}
}
