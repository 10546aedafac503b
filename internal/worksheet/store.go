// Package worksheet defines worksheet persistence and rendering.
package worksheet

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

// Store persists generated worksheets
type Store interface {
	Save(ctx context.Context, ws *domain.Worksheet) error
	Get(ctx context.Context, id string) (*domain.Worksheet, error)
	List(ctx context.Context, f Filter) ([]*domain.Worksheet, error)
	Delete(ctx context.Context, id string) error
}

// Filter narrows List results
type Filter struct {
	Topic string
	// Limit caps the result count. Zero means no cap.
	Limit int
}

// Match reports whether ws passes the filter's predicates
func (f Filter) Match(ws *domain.Worksheet) bool {
	return f.Topic == "" || ws.Topic == f.Topic
}

// Apply sorts worksheets newest first, filters and truncates them
func (f Filter) Apply(all []*domain.Worksheet) []*domain.Worksheet {
	out := make([]*domain.Worksheet, 0, len(all))
	for _, ws := range all {
		if f.Match(ws) {
			out = append(out, ws)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// MemoryStore keeps worksheets in memory
type MemoryStore struct {
	mu         sync.RWMutex
	worksheets map[string]*domain.Worksheet
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{worksheets: make(map[string]*domain.Worksheet)}
}

func (s *MemoryStore) Save(_ context.Context, ws *domain.Worksheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *ws
	c.Problems = append([]domain.Problem(nil), ws.Problems...)
	s.worksheets[ws.ID] = &c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Worksheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.worksheets[id]
	if !ok {
		return nil, domain.ErrWorksheetNotFound
	}
	c := *ws
	return &c, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]*domain.Worksheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Worksheet, 0, len(s.worksheets))
	for _, ws := range s.worksheets {
		c := *ws
		all = append(all, &c)
	}
	return f.Apply(all), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.worksheets[id]; !ok {
		return domain.ErrWorksheetNotFound
	}
	delete(s.worksheets, id)
	return nil
}
