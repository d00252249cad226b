package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"paygate/internal/admission/models"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/requestcontext"
)

// RedisCounterStore implements CounterStore on a shared Redis instance using
// atomic increment-and-expire, so admission decisions stay consistent when the
// gateway runs as multiple short-lived instances.
//
// Each key is a plain integer counter whose TTL marks the window expiry. The
// expiry is only set when the key is created (NX), so the window is fixed, not
// sliding, matching the in-memory reference implementation.
type RedisCounterStore struct {
	client redis.Cmdable
}

// NewRedisCounterStore creates a counter store backed by the given client.
func NewRedisCounterStore(client redis.Cmdable) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Incr counts one attempt against the key's current window.
// Attempts past the limit still increment the Redis counter; the decision is
// derived from the post-increment value, so exactly `limit` calls are allowed
// per window.
func (s *RedisCounterStore) Incr(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := requestcontext.Now(ctx)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment rate limit counter")
	}

	count := int(incr.Val())
	resetAt := now.Add(ttl.Val())
	if ttl.Val() <= 0 {
		// TTL can report -1 for a key created without expiry (e.g. after a
		// partial failure); treat the full window as remaining.
		resetAt = now.Add(window)
	}

	if count > limit {
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(now, resetAt),
		}, nil
	}

	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for a key.
func (s *RedisCounterStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset rate limit counter")
	}
	return nil
}

// Count returns the number of attempts recorded in the key's current window.
func (s *RedisCounterStore) Count(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read rate limit counter")
	}
	return count, nil
}
