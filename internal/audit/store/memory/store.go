package memory

import (
	"context"
	"sort"
	"sync"

	"visitorreg/internal/audit"
	"visitorreg/pkg/paging"
)

// InMemoryStore keeps audit entries in insertion order. Used when no database is
// configured and in tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// Search filters, orders by OccurredAt descending and returns the requested page
// plus the pre-pagination total.
func (s *InMemoryStore) Search(_ context.Context, filter audit.Filter, page paging.Request) ([]*audit.Entry, int, error) {
	s.mu.RLock()
	matched := make([]*audit.Entry, 0, len(s.entries))
	for i := range s.entries {
		if filter.Matches(&s.entries[i]) {
			e := s.entries[i]
			matched = append(matched, &e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	total := len(matched)
	start := page.Offset()
	if start < 0 || start >= total {
		return []*audit.Entry{}, total, nil
	}
	end := start + page.Size
	if end > total || end < start {
		end = total
	}
	return matched[start:end], total, nil
}

// All returns a copy of every stored entry in insertion order.
func (s *InMemoryStore) All() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry(nil), s.entries...)
}
