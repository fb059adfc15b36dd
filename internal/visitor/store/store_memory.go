package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/sentinel"
)

// InMemoryStore keeps visitors in process memory. It enforces the same unique
// register number and version rules as the PostgreSQL store.
type InMemoryStore struct {
	mu           sync.RWMutex
	visitors     map[id.VisitorID]*models.Visitor
	byRegisterNo map[string]id.VisitorID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		visitors:     make(map[id.VisitorID]*models.Visitor),
		byRegisterNo: make(map[string]id.VisitorID),
	}
}

// Add stores a new visitor and sets its version to 1.
func (s *InMemoryStore) Add(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byRegisterNo[v.RegisterNo]; taken {
		return fmt.Errorf("register number %s: %w", v.RegisterNo, sentinel.ErrAlreadyUsed)
	}
	if _, exists := s.visitors[v.ID]; exists {
		return fmt.Errorf("visitor %s: %w", v.ID, sentinel.ErrAlreadyUsed)
	}
	v.Version = 1
	s.visitors[v.ID] = v.Clone()
	s.byRegisterNo[v.RegisterNo] = v.ID
	return nil
}

// Update replaces the mutable fields when v.Version matches the stored version,
// then advances the version on both copies.
func (s *InMemoryStore) Update(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.visitors[v.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != v.Version {
		return fmt.Errorf("visitor %s version %d: %w", v.ID, v.Version, sentinel.ErrConflict)
	}
	v.Version++
	s.visitors[v.ID] = v.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.Clone(), nil
}

func (s *InMemoryStore) FindByRegisterNo(_ context.Context, registerNo string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byRegisterNo[registerNo]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.visitors[visitorID].Clone(), nil
}

// Search returns one page ordered by check-in time, most recent first.
func (s *InMemoryStore) Search(_ context.Context, filter models.SearchFilter, page paging.Request) ([]*models.Visitor, int, error) {
	s.mu.RLock()
	matched := make([]*models.Visitor, 0)
	for _, v := range s.visitors {
		if filter.Matches(v) {
			matched = append(matched, v.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CheckInAt.Equal(matched[j].CheckInAt) {
			return matched[i].CheckInAt.After(matched[j].CheckInAt)
		}
		return matched[i].RegisterNo > matched[j].RegisterNo
	})

	total := len(matched)
	start := page.Offset()
	if start < 0 || start >= total {
		return []*models.Visitor{}, total, nil
	}
	end := start + page.Size
	if end > total || end < start {
		end = total
	}
	return matched[start:end], total, nil
}

// PeekLatestRegisterNo returns the greatest register number under dayPrefix.
func (s *InMemoryStore) PeekLatestRegisterNo(_ context.Context, dayPrefix string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest, found := "", false
	for no := range s.byRegisterNo {
		if strings.HasPrefix(no, dayPrefix) && no > latest {
			latest, found = no, true
		}
	}
	return latest, found, nil
}
