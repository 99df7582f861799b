package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// Store is the in-memory result aggregator of a single batch run. Workers
// only hold the lock for the append itself.
type Store struct {
	mu      sync.RWMutex
	results []domain.ProbeResult
}

// New returns an empty Store with room for capacity results.
func New(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		results: make([]domain.ProbeResult, 0, capacity),
	}
}

func (m *Store) Append(ctx context.Context, r domain.ProbeResult) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return len(m.results), nil
}

// Results returns a copy of everything appended so far, in completion order.
func (m *Store) Results(ctx context.Context) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProbeResult, len(m.results))
	copy(out, m.results)
	return out, nil
}

// Completed is the number of results appended so far.
func (m *Store) Completed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results)
}

// Summary derives statistics from the stored results on every call.
func (m *Store) Summary() domain.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Summarize(m.results)
}
