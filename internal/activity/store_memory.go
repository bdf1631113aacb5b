package activity

import (
	"context"
	"slices"
	"sync"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ClaimID] = append(s.events[event.ClaimID], event)
	return nil
}

// ListByClaim returns a claim's events oldest first, optionally filtered by action.
func (s *InMemoryStore) ListByClaim(_ context.Context, claimID string, actions ...Action) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, len(s.events[claimID]))
	for _, e := range s.events[claimID] {
		if len(actions) == 0 || slices.Contains(actions, e.Action) {
			out = append(out, e)
		}
	}
	return out, nil
}
