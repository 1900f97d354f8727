package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

// ---- LeadRepository mock ----

var _ repository.LeadRepository = (*LeadRepository)(nil)

// LeadRepository is a test double for repository.LeadRepository.
type LeadRepository struct {
	mu sync.Mutex

	UpsertLeadsFn func(ctx context.Context, leads []*domain.Lead, category domain.Category) (int, error)
	ExistingIDsFn func(ctx context.Context) (map[string]struct{}, error)
	ListFn        func(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error)
	CountFn       func(ctx context.Context, filter domain.LeadFilter) (int, error)
	DeleteAllFn   func(ctx context.Context) (int64, error)

	// Recorded calls for assertions.
	Upserts     []LeadUpsert
	ListCalls   []domain.LeadFilter
	DeleteCalls int
}

type LeadUpsert struct {
	Category domain.Category
	Leads    []*domain.Lead
}

func (m *LeadRepository) UpsertLeads(ctx context.Context, leads []*domain.Lead, category domain.Category) (int, error) {
	m.mu.Lock()
	m.Upserts = append(m.Upserts, LeadUpsert{Category: category, Leads: leads})
	m.mu.Unlock()
	if m.UpsertLeadsFn != nil {
		return m.UpsertLeadsFn(ctx, leads, category)
	}
	return len(leads), nil
}

func (m *LeadRepository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	if m.ExistingIDsFn != nil {
		return m.ExistingIDsFn(ctx)
	}
	return map[string]struct{}{}, nil
}

func (m *LeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, filter)
	m.mu.Unlock()
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, nil
}

func (m *LeadRepository) Count(ctx context.Context, filter domain.LeadFilter) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	return 0, nil
}

func (m *LeadRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return 0, nil
}

// UpsertedCategories returns the category of every UpsertLeads call, in order.
func (m *LeadRepository) UpsertedCategories() []domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(m.Upserts))
	for _, u := range m.Upserts {
		out = append(out, u.Category)
	}
	return out
}

// ---- SourceRepository mock ----

var _ repository.SourceRepository = (*SourceRepository)(nil)

// SourceRepository is a test double for repository.SourceRepository.
type SourceRepository struct {
	mu sync.Mutex

	UpsertFn     func(ctx context.Context, name string) error
	ListActiveFn func(ctx context.Context) ([]string, error)
	DeactivateFn func(ctx context.Context, name string) error
	DeleteAllFn  func(ctx context.Context) (int64, error)

	Upserted    []string
	Deactivated []string
}

func (m *SourceRepository) Upsert(ctx context.Context, name string) error {
	m.mu.Lock()
	m.Upserted = append(m.Upserted, name)
	m.mu.Unlock()
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, name)
	}
	return nil
}

func (m *SourceRepository) ListActive(ctx context.Context) ([]string, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *SourceRepository) Deactivate(ctx context.Context, name string) error {
	m.mu.Lock()
	m.Deactivated = append(m.Deactivated, name)
	m.mu.Unlock()
	if m.DeactivateFn != nil {
		return m.DeactivateFn(ctx, name)
	}
	return nil
}

func (m *SourceRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return 0, nil
}

// ---- IdempotencyStore mock ----

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore is a test double for repository.IdempotencyStore.
type IdempotencyStore struct {
	mu sync.Mutex

	AcquireLockFn func(ctx context.Context, requestID uuid.UUID) (bool, error)
	ReleaseLockFn func(ctx context.Context, requestID uuid.UUID) error
	ClearLockFn   func(ctx context.Context, requestID uuid.UUID) error

	AcquireCalls []uuid.UUID
	ReleaseCalls []uuid.UUID
	ClearCalls   []uuid.UUID
}

func (m *IdempotencyStore) AcquireLock(ctx context.Context, requestID uuid.UUID) (bool, error) {
	m.mu.Lock()
	m.AcquireCalls = append(m.AcquireCalls, requestID)
	m.mu.Unlock()
	if m.AcquireLockFn != nil {
		return m.AcquireLockFn(ctx, requestID)
	}
	return true, nil // default: lock acquired
}

func (m *IdempotencyStore) ReleaseLock(ctx context.Context, requestID uuid.UUID) error {
	m.mu.Lock()
	m.ReleaseCalls = append(m.ReleaseCalls, requestID)
	m.mu.Unlock()
	if m.ReleaseLockFn != nil {
		return m.ReleaseLockFn(ctx, requestID)
	}
	return nil
}

func (m *IdempotencyStore) ClearLock(ctx context.Context, requestID uuid.UUID) error {
	m.mu.Lock()
	m.ClearCalls = append(m.ClearCalls, requestID)
	m.mu.Unlock()
	if m.ClearLockFn != nil {
		return m.ClearLockFn(ctx, requestID)
	}
	return nil
}

// ---- Extractor mock ----

var _ repository.Extractor = (*Extractor)(nil)

// Extractor is a test double for repository.Extractor.
type Extractor struct {
	mu sync.Mutex

	ExtractFn func(ctx context.Context, sources []string, progress repository.ProgressReporter) ([]domain.Post, []domain.Comment, error)

	ExtractCalls [][]string
}

func (m *Extractor) Extract(ctx context.Context, sources []string, progress repository.ProgressReporter) ([]domain.Post, []domain.Comment, error) {
	m.mu.Lock()
	m.ExtractCalls = append(m.ExtractCalls, sources)
	m.mu.Unlock()
	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, sources, progress)
	}
	return nil, nil, nil
}

// Calls returns how many times Extract was invoked.
func (m *Extractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ExtractCalls)
}

// ---- Classifier mock ----

var _ repository.Classifier = (*Classifier)(nil)

// Classifier is a test double for repository.Classifier.
type Classifier struct {
	mu sync.Mutex

	ClassifyFn func(ctx context.Context, query string, posts []domain.Post, comments []domain.Comment) (domain.Classification, error)

	Queries []string
}

func (m *Classifier) Classify(ctx context.Context, query string, posts []domain.Post, comments []domain.Comment) (domain.Classification, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.ClassifyFn != nil {
		return m.ClassifyFn(ctx, query, posts, comments)
	}
	return domain.PlainText("no leads"), nil
}

// Calls returns how many times Classify was invoked.
func (m *Classifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}
