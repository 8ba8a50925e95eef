package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool_AcquireRelease(t *testing.T) {
	pool := newBufferPool(3, 128)
	ctx := context.Background()

	bufs := make([][]byte, 3)
	for i := range bufs {
		buf, err := pool.acquire(ctx)
		require.NoError(t, err)
		require.Len(t, buf, 128)
		bufs[i] = buf
	}

	for _, buf := range bufs {
		pool.release(buf)
	}

	buf, err := pool.acquire(ctx)
	require.NoError(t, err)
	assert.Len(t, buf, 128)
}

func TestBufferPool_AcquireBlocksWhenExhausted(t *testing.T) {
	pool := newBufferPool(2, 16)
	ctx := context.Background()

	first, err := pool.acquire(ctx)
	require.NoError(t, err)
	second, err := pool.acquire(ctx)
	require.NoError(t, err)
	_ = second

	acquired := make(chan []byte, 1)
	go func() {
		buf, err := pool.acquire(ctx)
		if err == nil {
			acquired <- buf
		}
	}()

	select {
	case <-acquired:
		t.Fatal("acquire succeeded while every buffer was checked out")
	case <-time.After(50 * time.Millisecond):
	}

	pool.release(first)

	select {
	case buf := <-acquired:
		assert.Len(t, buf, 16)
	case <-time.After(time.Second):
		t.Fatal("acquire did not unblock after a release")
	}
}

func TestBufferPool_AcquireCancellation(t *testing.T) {
	pool := newBufferPool(1, 16)

	_, err := pool.acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = pool.acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBufferPool_BuffersAreNotCleared(t *testing.T) {
	pool := newBufferPool(1, 8)
	ctx := context.Background()

	buf, err := pool.acquire(ctx)
	require.NoError(t, err)
	copy(buf, "dirtybuf")
	pool.release(buf)

	again, err := pool.acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("dirtybuf"), again)
}
