package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	mockpub "github.com/Harsh-BH/Leadly/internal/publisher/mock"
	"github.com/Harsh-BH/Leadly/internal/repository/memory"
	mockrepo "github.com/Harsh-BH/Leadly/internal/repository/mock"
	"github.com/Harsh-BH/Leadly/internal/task"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

const testKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// gateFinder completes every job once release is closed.
type gateFinder struct {
	release chan struct{}
}

func (f *gateFinder) Run(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
	job.UpdateStatus(domain.StatusProcessing)
	select {
	case <-f.release:
		job.AddResults(3, 2, 1)
		job.MarkCompleted()
	case <-ctx.Done():
	}
	return nil
}

type testEnv struct {
	router  *gin.Engine
	jobs    *memory.JobRegistry
	tasks   *task.Registry
	finder  *gateFinder
	leads   *mockrepo.LeadRepository
	sources *mockrepo.SourceRepository
	pub     *mockpub.MockPublisher
	health  map[string]HealthCheck
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())

	env := &testEnv{
		jobs:    memory.NewJobRegistry(),
		tasks:   task.NewRegistry(logger),
		finder:  &gateFinder{release: make(chan struct{})},
		leads:   &mockrepo.LeadRepository{},
		sources: &mockrepo.SourceRepository{},
		pub:     mockpub.NewMockPublisher(),
		health: map[string]HealthCheck{
			"postgres": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return nil },
		},
	}
	t.Cleanup(func() {
		cancel()
		env.tasks.Wait()
	})

	env.router = NewRouter(ctx, RouterDeps{
		SubmitSearch:  usecase.NewSubmitSearchUsecase(ctx, env.jobs, env.tasks, env.finder, logger),
		GetSearch:     usecase.NewGetSearchUsecase(env.jobs, env.tasks),
		CancelSearch:  usecase.NewCancelSearchUsecase(env.jobs, env.tasks, logger),
		ListLeads:     usecase.NewListLeadsUsecase(env.leads),
		ManageSources: usecase.NewManageSourcesUsecase(env.sources, logger),
		TriggerScan:   usecase.NewTriggerScanUsecase(env.pub, "video editing services", logger),
		HealthChecks:  env.health,
		APIKeys:       []string{testKey},
		RateLimit:     1000,
		MaxBodyBytes:  64 << 10,
		Logger:        logger,
	})
	return env
}

func (env *testEnv) do(method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) submit(t *testing.T) string {
	t.Helper()
	w := env.do(http.MethodPost, "/api/v1/reddit/search", map[string]any{
		"subreddits": []string{"forhire"},
		"user_query": "video editing",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp domain.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.JobID
}

func TestSubmitHandler_Success(t *testing.T) {
	env := setupTestRouter(t)

	id := env.submit(t)
	if id == "" {
		t.Fatal("expected non-empty job ID")
	}
	if env.jobs.Len() != 1 {
		t.Errorf("expected 1 registered job, got %d", env.jobs.Len())
	}
}

func TestSubmitHandler_Validation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty body", map[string]any{}},
		{"no subreddits", map[string]any{"subreddits": []string{}, "user_query": "q"}},
		{"blank query", map[string]any{"subreddits": []string{"forhire"}, "user_query": "  "}},
		{"bad subreddit", map[string]any{"subreddits": []string{"no spaces"}, "user_query": "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/reddit/search", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if env.jobs.Len() != 0 {
		t.Errorf("expected no jobs, got %d", env.jobs.Len())
	}
}

func TestSubmitHandler_RequiresAuth(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reddit/search", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestGetByIDHandler_Lifecycle(t *testing.T) {
	env := setupTestRouter(t)
	id := env.submit(t)

	w := env.do(http.MethodGet, "/api/v1/reddit/search/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var view domain.JobView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to unmarshal job: %v", err)
	}
	if view.JobID != id || view.Status.IsTerminal() {
		t.Errorf("expected a running job %s, got %+v", id, view)
	}

	close(env.finder.release)
	env.tasks.Wait()

	w = env.do(http.MethodGet, "/api/v1/reddit/search/"+id, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to unmarshal job: %v", err)
	}
	if view.Status != domain.StatusCompleted || view.Progress != 100 {
		t.Errorf("expected completed at 100, got %s at %d", view.Status, view.Progress)
	}
	if view.Results.PostsProcessed != 3 || view.Results.LeadsFound != 1 {
		t.Errorf("unexpected results %+v", view.Results)
	}
}

func TestGetByIDHandler_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodGet, "/api/v1/reddit/search/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCancelHandler(t *testing.T) {
	env := setupTestRouter(t)
	id := env.submit(t)

	w := env.do(http.MethodDelete, "/api/v1/reddit/search/"+id+"?purge=true", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := env.tasks.Get(id); ok {
		t.Error("expected task entry to be removed")
	}

	w = env.do(http.MethodGet, "/api/v1/reddit/search/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected purged job to be gone, got %d", w.Code)
	}

	w = env.do(http.MethodDelete, "/api/v1/reddit/search/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown job, got %d", w.Code)
	}

	w = env.do(http.MethodDelete, "/api/v1/reddit/search/"+id+"?purge=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad purge flag, got %d", w.Code)
	}
}

func TestLeadHandler_List(t *testing.T) {
	env := setupTestRouter(t)
	env.leads.ListFn = func(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error) {
		return []*domain.Lead{{ItemID: "abc", Category: domain.CategoryHot}}, nil
	}
	env.leads.CountFn = func(ctx context.Context, filter domain.LeadFilter) (int, error) { return 1, nil }

	w := env.do(http.MethodGet, "/api/v1/leads?limit=5&category=HOT&subreddit=forhire", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp domain.LeadsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Limit != 5 || len(resp.Leads) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
	got := env.leads.ListCalls[0]
	if got.Category != domain.CategoryHot || got.Subreddit != "forhire" {
		t.Errorf("unexpected filter %+v", got)
	}

	for _, target := range []string{"/api/v1/leads?limit=abc", "/api/v1/leads?category=warm"} {
		if w := env.do(http.MethodGet, target, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, w.Code)
		}
	}
}

func TestLeadHandler_DatabaseDown(t *testing.T) {
	env := setupTestRouter(t)
	env.leads.ListFn = func(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error) {
		return nil, errors.New("connection refused")
	}

	w := env.do(http.MethodGet, "/api/v1/leads", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestSubredditHandler(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/api/v1/config/subreddits", map[string]string{"subreddit": "r/SaaS"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(env.sources.Upserted) != 1 || env.sources.Upserted[0] != "SaaS" {
		t.Errorf("expected SaaS upserted, got %v", env.sources.Upserted)
	}

	w = env.do(http.MethodPost, "/api/v1/config/subreddits", map[string]string{"subreddit": "!"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	w = env.do(http.MethodDelete, "/api/v1/config/subreddits/SaaS", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/config/subreddits", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp domain.SourcesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Subreddits) != len(domain.DefaultSources) {
		t.Errorf("expected default subreddits, got %v", resp.Subreddits)
	}
}

func TestScheduleHandler(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/api/v1/schedule/run", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/schedule/run", map[string]any{"subreddits": []string{"startups"}})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if env.pub.Count() != 2 {
		t.Errorf("expected 2 published requests, got %d", env.pub.Count())
	}

	env.pub.PublishFn = func(ctx context.Context, req *domain.ScanRequest) error { return errors.New("broker down") }
	w = env.do(http.MethodPost, "/api/v1/schedule/run", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 without auth, got %d", w.Code)
	}

	env.health["redis"] = func(ctx context.Context) error { return errors.New("down") }
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"redis":"unavailable"`) {
		t.Errorf("expected redis to be reported unavailable: %s", w.Body.String())
	}
}

func TestWebSocketHandler_StreamsUntilTerminal(t *testing.T) {
	env := setupTestRouter(t)
	id := env.submit(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/reddit/search/" + id + "/stream?token=" + testKey
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var first domain.JobView
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if first.JobID != id {
		t.Errorf("expected job %s, got %s", id, first.JobID)
	}

	close(env.finder.release)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var view domain.JobView
		if err := conn.ReadJSON(&view); err != nil {
			t.Fatalf("stream ended before a terminal state: %v", err)
		}
		if view.Status == domain.StatusCompleted {
			break
		}
	}
}

func TestWebSocketHandler_ClosesAfterCancel(t *testing.T) {
	env := setupTestRouter(t)
	id := env.submit(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/reddit/search/" + id + "/stream?token=" + testKey
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var first domain.JobView
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if w := env.do(http.MethodDelete, "/api/v1/reddit/search/"+id, nil); w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", w.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var view domain.JobView
		err := conn.ReadJSON(&view)
		if err == nil {
			if view.Status.IsTerminal() {
				t.Fatalf("cancelled job should keep its last status, got %s", view.Status)
			}
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("expected a normal close, got %v", err)
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Text != "cancelled" {
			t.Errorf("expected close reason cancelled, got %q", ce.Text)
		}
		return
	}
}

func TestWebSocketHandler_UnknownJob(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodGet, "/api/v1/reddit/search/missing/stream", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
