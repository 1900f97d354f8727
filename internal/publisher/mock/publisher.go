package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/publisher"
)

// Ensure MockPublisher implements publisher.Publisher.
var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher is a mock message publisher for testing.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.ScanRequest
	PublishFn func(ctx context.Context, req *domain.ScanRequest) error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, req *domain.ScanRequest) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, req)
	}
	m.mu.Lock()
	m.Published = append(m.Published, req)
	m.mu.Unlock()
	return nil
}

// Count returns how many requests were published.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}

func (m *MockPublisher) Close() error {
	return nil
}
