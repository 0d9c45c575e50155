package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AdmitsUpToLimit(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	for i := 1; i <= 5; i++ {
		res, err := store.Check(context.Background(), "client-a", 5, time.Minute, now)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be admitted", i)
		assert.Equal(t, 5-i, res.Remaining)
		assert.Equal(t, 5, res.Limit)
	}

	// The (limit+1)-th request in the same window is rejected
	res, err := store.Check(context.Background(), "client-a", 5, time.Minute, now)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)
}

func TestMemoryStore_RejectionDoesNotConsumeQuota(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	for i := 0; i < 10; i++ {
		store.Check(context.Background(), "client-a", 2, time.Minute, now)
	}

	// Remaining never goes negative no matter how many rejections pile up
	res, err := store.Check(context.Background(), "client-a", 2, time.Minute, now)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestMemoryStore_WindowReset(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	// Exhaust the window
	for i := 0; i < 3; i++ {
		store.Check(context.Background(), "client-a", 3, time.Minute, now)
	}
	res, _ := store.Check(context.Background(), "client-a", 3, time.Minute, now)
	require.False(t, res.Allowed)

	// Once the window elapses a new request is admitted regardless of the
	// prior count
	later := now.Add(time.Minute)
	res, err := store.Check(context.Background(), "client-a", 3, time.Minute, later)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, later.Add(time.Minute), res.ResetAt)
}

func TestMemoryStore_ClientsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	// Exhaust client-a's window
	for i := 0; i < 2; i++ {
		store.Check(context.Background(), "client-a", 2, time.Minute, now)
	}
	res, _ := store.Check(context.Background(), "client-a", 2, time.Minute, now)
	require.False(t, res.Allowed)

	// client-b has a full quota
	res, err := store.Check(context.Background(), "client-b", 2, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryStore_LazyPurge(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Check(context.Background(), "client-a", 5, time.Minute, now)
	store.Check(context.Background(), "client-b", 5, time.Minute, now)
	assert.Equal(t, 2, store.Len())

	// A check after both windows expired sweeps them out
	store.Check(context.Background(), "client-c", 5, time.Minute, now.Add(2*time.Minute))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_BoundaryBurst(t *testing.T) {
	// Fixed windows allow up to 2x the limit across a boundary; this is the
	// documented trade-off, pinned here so it is not "fixed" by accident.
	store := NewMemoryStore()
	now := time.Now()

	admitted := 0
	for i := 0; i < 3; i++ {
		res, _ := store.Check(context.Background(), "client-a", 3, time.Minute, now)
		if res.Allowed {
			admitted++
		}
	}
	justAfterReset := now.Add(time.Minute + time.Millisecond)
	for i := 0; i < 3; i++ {
		res, _ := store.Check(context.Background(), "client-a", 3, time.Minute, justAfterReset)
		if res.Allowed {
			admitted++
		}
	}

	assert.Equal(t, 6, admitted)
}

func TestLimiter_UsesConfiguredLimit(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), 1, time.Minute)

	res, err := limiter.Check(context.Background(), "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Limit)
	assert.Equal(t, 0, res.Remaining)

	res, err = limiter.Check(context.Background(), "client-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}
