// Package ratelimit caps how often one client may call the model-backed
// endpoints.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of one limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only set when not allowed
}

// Store counts requests per key within a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

const sweepInterval = time.Minute

type bucket struct {
	stamps []time.Time
	length time.Duration
}

// InMemory is a sliding-window store local to the process. Idle keys are
// swept so one-off callers do not accumulate.
type InMemory struct {
	mu        sync.Mutex
	windows   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		windows: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &bucket{}
		s.windows[key] = w
	}
	w.length = window
	stamps := prune(w.stamps, now.Add(-window))

	if len(stamps) >= limit {
		w.stamps = stamps
		resetAt := stamps[0].Add(window)
		return &Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	stamps = append(stamps, now)
	w.stamps = stamps
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}, nil
}

// sweep deletes keys whose every timestamp has left its window.
func (s *InMemory) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, w := range s.windows {
		if prune(w.stamps, now.Add(-w.length)) == nil {
			delete(s.windows, key)
		}
	}
}

// prune drops timestamps at or before cutoff.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	if i == len(stamps) {
		return nil
	}
	return stamps[i:]
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(resetAt.Sub(now).Seconds() + 0.999)
	return max(secs, 1)
}
