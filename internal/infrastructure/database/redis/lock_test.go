package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
)

func TestMutex_Lock_Unlock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	lock := NewMutex(client, "test-lock", logging.NewNopLogger(), WithLockTTL(time.Second))

	require.NoError(t, lock.Lock(ctx))
	assert.True(t, mr.Exists("keyip:lock:test-lock"))

	ttl, err := lock.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Second, ttl)

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists("keyip:lock:test-lock"))
}

func TestMutex_Lock_Contention(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	lock1 := NewMutex(client, "test-lock", nil, WithRetryCount(1), WithRetryDelay(10*time.Millisecond))
	lock2 := NewMutex(client, "test-lock", nil, WithRetryCount(1), WithRetryDelay(10*time.Millisecond))

	require.NoError(t, lock1.Lock(ctx))
	assert.Equal(t, ErrLockNotAcquired, lock2.Lock(ctx))

	require.NoError(t, lock1.Unlock(ctx))
	assert.NoError(t, lock2.Lock(ctx))
}

func TestMutex_UnlockByNonOwner(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	owner := NewMutex(client, "owned", nil)
	other := NewMutex(client, "owned", nil)

	ok, err := owner.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ErrLockNotHeld, other.Unlock(ctx))
	ok, err = other.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_ExpiresWithoutWatchdog(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	lock := NewMutex(client, "lease", nil, WithLockTTL(time.Second))

	ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("keyip:lock:lease"))
	assert.Equal(t, ErrLockNotHeld, lock.Unlock(ctx))
}

func TestMutex_Extend(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	lock := NewMutex(client, "ext", nil, WithLockTTL(time.Second))

	_, err := lock.TryLock(ctx)
	require.NoError(t, err)

	ok, err := lock.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("keyip:lock:ext"))
}

func TestMutex_Watchdog(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	lock := NewMutex(client, "dog", nil, WithLockTTL(300*time.Millisecond), WithWatchdog(true))

	ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// The watchdog renews the lease every ttl/3.
	mr.SetTTL("keyip:lock:dog", time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL("keyip:lock:dog") > 100*time.Millisecond
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists("keyip:lock:dog"))
}

func TestMutex_ClosedClient(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Close())

	ok, err := NewMutex(client, "x", nil).TryLock(context.Background())
	assert.False(t, ok)
	assert.Equal(t, ErrClientClosed, err)
}

//Personal.AI order the ending
