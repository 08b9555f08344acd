package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

func TestSessionGuard_Overlap(t *testing.T) {
	client, mr := newTestClient(t)
	guard := NewSessionGuard(client, time.Minute, nil)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "chat-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("keyip:lock:session:chat-1"))

	_, err = guard.Acquire(ctx, "chat-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSearchInProgress)
	assert.True(t, errors.IsConflict(err))

	other, err := guard.Acquire(ctx, "chat-2")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("keyip:lock:session:chat-1"))

	again, err := guard.Acquire(ctx, " chat-1 ")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestSessionGuard_EmptySession(t *testing.T) {
	client, _ := newTestClient(t)
	guard := NewSessionGuard(client, 0, nil)

	_, err := guard.Acquire(context.Background(), "  ")
	assert.True(t, errors.IsValidation(err))
}

func TestSessionGuard_RedisDown(t *testing.T) {
	client, mr := newTestClient(t)
	guard := NewSessionGuard(client, time.Minute, nil)
	mr.Close()

	_, err := guard.Acquire(context.Background(), "chat-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

//Personal.AI order the ending
