package documents

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// InMemory keeps attachments for the lifetime of the process.
type InMemory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string]Object)}
}

func (s *InMemory) Put(_ context.Context, obj Object) (string, error) {
	if obj.ClaimID == "" || obj.Name == "" {
		return "", fmt.Errorf("claim id and name are required")
	}
	stored := obj
	stored.Content = append([]byte(nil), obj.Content...)

	s.mu.Lock()
	s.objects[indexPrefix(obj.ClaimID, obj.Index)] = stored
	s.mu.Unlock()
	return DownloadPath(obj.ClaimID, obj.Index), nil
}

func (s *InMemory) Get(_ context.Context, claimID string, index int) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[indexPrefix(claimID, index)]
	if !ok {
		return nil, ErrNotFound
	}
	obj.Content = append([]byte(nil), obj.Content...)
	return &obj, nil
}

// DeleteClaim drops every attachment of a claim.
func (s *InMemory) DeleteClaim(_ context.Context, claimID string) error {
	prefix := claimPrefix(claimID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}
