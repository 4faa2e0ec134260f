package gift

import (
	"fmt"
	"sync"
)

// Store persists gift records keyed by code. Implementations must be safe
// for concurrent use. The manager never depends on which implementation
// backs it, so the in-memory store can be swapped for a persistent one
// without touching the lifecycle logic.
type Store interface {
	Create(g *Gift) error
	Get(code string) (*Gift, error)
	Update(g *Gift) error
	ListPending() []*Gift
	Exists(code string) bool
}

// MemStore is an in-memory Store for tests and single-run demos
type MemStore struct {
	mu    sync.RWMutex
	gifts map[string]*Gift
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		gifts: make(map[string]*Gift),
	}
}

// Create adds a new gift record
func (s *MemStore) Create(g *Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.gifts[g.Code]; exists {
		return fmt.Errorf("gift code '%s' already exists", g.Code)
	}

	s.gifts[g.Code] = g
	return nil
}

// Get retrieves a gift by code
func (s *MemStore) Get(code string) (*Gift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.gifts[code]
	if !exists {
		return nil, fmt.Errorf("gift code '%s' not found", code)
	}

	return g, nil
}

// Update modifies an existing gift record
func (s *MemStore) Update(g *Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.gifts[g.Code]; !exists {
		return fmt.Errorf("gift code '%s' not found", g.Code)
	}

	s.gifts[g.Code] = g
	return nil
}

// ListPending returns all unclaimed gifts
func (s *MemStore) ListPending() []*Gift {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gifts := make([]*Gift, 0)
	for _, g := range s.gifts {
		if g.IsPending() {
			gifts = append(gifts, g)
		}
	}

	return gifts
}

// Exists checks whether a code is taken
func (s *MemStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.gifts[code]
	return exists
}

var _ Store = (*MemStore)(nil)
