package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript applies the same policy as MemoryStore atomically on the
// server: never increment past the limit, set the expiry only when the
// window is created.
//
// KEYS[1] window counter key
// ARGV[1] limit
// ARGV[2] window in milliseconds
// Returns {count, ttl_ms, allowed}
var checkScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if count >= limit then
  return {count, redis.call('PTTL', KEYS[1]), 0}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {count, redis.call('PTTL', KEYS[1]), 1}
`)

// RedisStore shares windows across API instances through Redis, for
// deployments where the per-instance MemoryStore would under-enforce.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
}

func (s *RedisStore) Check(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	vals, err := checkScript.Run(ctx, s.client, []string{s.keyPrefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, err
	}

	count := int(vals[0])
	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	allowed := vals[2] == 1

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}, nil
}
