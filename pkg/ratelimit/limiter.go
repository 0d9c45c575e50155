package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Fixed-window request admission. Windows reset at a fixed deadline rather
// than sliding, so a client can burst up to twice the limit across a window
// boundary; that imprecision is accepted and relied upon by the tests.
//
// The counter store is injected so the in-process map can be swapped for a
// shared store (see RedisStore) when the API runs behind a load balancer.
// With the in-memory store each instance tracks clients independently and
// the effective limit is per instance, not global.

// Result reports the outcome of an admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// CounterStore applies the fixed-window policy for a single key.
type CounterStore interface {
	Check(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}

// Limiter binds a CounterStore to a limit and window duration.
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
}

func NewLimiter(store CounterStore, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Check admits or rejects a request for the given client key.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	return l.store.Check(ctx, key, l.limit, l.window, time.Now())
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore tracks windows in an in-process map. Counts reset on process
// restart and are not shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*windowEntry),
	}
}

func (s *MemoryStore) Check(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Lazy purge of expired windows. O(n) over tracked clients, acceptable
	// for the bounded client cardinality this deployment sees.
	for k, e := range s.entries {
		if !e.resetAt.After(now) {
			delete(s.entries, k)
		}
	}

	entry, ok := s.entries[key]
	if !ok {
		entry = &windowEntry{resetAt: now.Add(window)}
		s.entries[key] = entry
	}

	if entry.count >= limit {
		return Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   entry.resetAt,
		}, nil
	}

	entry.count++
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - entry.count,
		ResetAt:   entry.resetAt,
	}, nil
}

// Len reports the number of tracked windows. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
