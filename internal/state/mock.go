package state

import (
	"context"
	"slices"
	"sync"
)

var _ Interface = (*Mock)(nil)

// Mock is a test double for Manager.
type Mock struct {
	mu      sync.Mutex
	resumes map[string]Resume
	history []HistoryEntry
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{resumes: map[string]Resume{}}
}

func (m *Mock) SaveResume(r Resume) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[r.CDN] = r
}

func (m *Mock) GetResume(_ context.Context, cdn string) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[cdn]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Mock) ClearResume(_ context.Context, cdn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resumes, cdn)
	return nil
}

func (m *Mock) Flush(context.Context) error { return nil }

func (m *Mock) StartPlay(_ context.Context, e HistoryEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.history) + 1)
	e.Outcome = OutcomePlaying
	m.history = append(m.history, e)
	return e.ID, nil
}

func (m *Mock) EndPlay(_ context.Context, id int64, outcome Outcome, failure string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID == id && m.history[i].Outcome == OutcomePlaying {
			m.history[i].Outcome = outcome
			m.history[i].Failure = failure
		}
	}
	return nil
}

func (m *Mock) History(_ context.Context, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.history)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Mock) Close() error { return nil }
