// Package store persists claim records newest-first.
package store

import (
	"context"
	"fmt"
	"sync"

	"claimsight/internal/claims/models"
	"claimsight/pkg/platform/sentinel"
)

// InMemory keeps claims for the lifetime of the process.
// Records are copied on the way in and out so callers never share stored state.
type InMemory struct {
	mu     sync.RWMutex
	claims []*models.Claim // newest first
	index  map[string]*models.Claim
}

func NewInMemory() *InMemory {
	return &InMemory{index: make(map[string]*models.Claim)}
}

// Add inserts a claim at the head of the collection.
func (s *InMemory) Add(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[claim.ID]; exists {
		return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
	}
	stored := claim.Clone()
	s.claims = append([]*models.Claim{stored}, s.claims...)
	s.index[claim.ID] = stored
	return nil
}

// Update replaces the claim with a matching id, keeping its position.
func (s *InMemory) Update(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[claim.ID]; !exists {
		return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrNotFound)
	}
	stored := claim.Clone()
	for i, c := range s.claims {
		if c.ID == claim.ID {
			s.claims[i] = stored
			break
		}
	}
	s.index[claim.ID] = stored
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("claim %s: %w", id, sentinel.ErrNotFound)
	}
	return c.Clone(), nil
}

// List returns every claim, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Claim, len(s.claims))
	for i, c := range s.claims {
		out[i] = c.Clone()
	}
	return out, nil
}
