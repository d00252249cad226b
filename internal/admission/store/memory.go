package store

import (
	"context"
	"sync"
	"time"

	"paygate/internal/admission/models"
	"paygate/pkg/requestcontext"
)

// windowCounter is the per-key fixed-window state.
type windowCounter struct {
	count   int
	resetAt time.Time
}

// InMemoryCounterStore implements CounterStore with a mutex-protected map of
// fixed-window counters. Windows expire lazily on access; there is no
// background sweep and entries live for the process lifetime.
//
// State is volatile: a restart resets all counters, so this store is a soft
// deterrent only. Deployments that need admission control observable across
// instances use RedisCounterStore instead.
type InMemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

// NewInMemoryCounterStore creates an empty in-memory counter store.
func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{
		counters: make(map[string]*windowCounter),
	}
}

// Incr counts one attempt against the key's current window and reports whether
// it fit under the limit. Every admitted attempt counts toward the limit:
// exactly `limit` calls are allowed per window, and the next one is denied
// with Remaining=0 and the window expiry.
func (s *InMemoryCounterStore) Incr(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok {
		counter = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = counter
	}

	// Lazy window expiry.
	if now.After(counter.resetAt) {
		counter.count = 0
		counter.resetAt = now.Add(window)
	}

	if counter.count >= limit {
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    counter.resetAt,
			RetryAfter: retryAfterSeconds(now, counter.resetAt),
		}, nil
	}

	counter.count++
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - counter.count,
		ResetAt:   counter.resetAt,
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryCounterStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}

// Count returns the number of attempts recorded in the key's current window.
func (s *InMemoryCounterStore) Count(ctx context.Context, key string) (int, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok || now.After(counter.resetAt) {
		return 0, nil
	}
	return counter.count, nil
}

// retryAfterSeconds calculates seconds until retry is allowed.
func retryAfterSeconds(now, resetAt time.Time) int {
	seconds := int(resetAt.Sub(now).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}
