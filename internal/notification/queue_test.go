package notification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(2, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, 1))
	require.NoError(t, q.Push(ctx, 2))
	require.ErrorIs(t, q.Push(ctx, 3), ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	id, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = q.Pop(ctx)
	require.ErrorIs(t, err, ErrQueueEmpty)
}

func TestMemoryQueue_PopCancelled(t *testing.T) {
	q := NewMemoryQueue(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Pop(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0, 2)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, PingRedis(ctx, client))

	q := NewRedisQueue(client, "reservations:notify", time.Second)

	require.NoError(t, q.Push(ctx, 7))
	require.NoError(t, q.Push(ctx, 8))

	// FIFO: LPUSH на вход, BRPOP на выход
	id, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	_, err = q.Pop(ctx)
	require.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRedisQueue_InvalidPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0, 2)
	defer client.Close()

	_, err := mr.Lpush("reservations:notify", "not-a-number")
	require.NoError(t, err)

	q := NewRedisQueue(client, "reservations:notify", time.Second)
	_, err = q.Pop(context.Background())
	require.Error(t, err)
}
