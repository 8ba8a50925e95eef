package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounded_FIFO(t *testing.T) {
	q := NewBounded[int](4)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Put(ctx, i))
	}

	for i := 0; i < 4; i++ {
		v, err := q.Take(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestBounded_PutBlocksWhenFull(t *testing.T) {
	q := NewBounded[string](1)
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "first"))

	unblocked := make(chan struct{})
	go func() {
		// Blocks until the consumer below frees a slot.
		if err := q.Put(ctx, "second"); err == nil {
			close(unblocked)
		}
	}()

	select {
	case <-unblocked:
		t.Fatal("Put returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	v, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("Put did not unblock after a Take freed space")
	}
}

func TestBounded_TakeBlocksWhenEmpty(t *testing.T) {
	q := NewBounded[int](1)
	ctx := context.Background()

	got := make(chan int, 1)
	go func() {
		v, err := q.Take(ctx)
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Take returned from an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, q.Put(ctx, 42))

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Take did not unblock after a Put")
	}
}

func TestBounded_PutCancellation(t *testing.T) {
	q := NewBounded[int](1)
	require.NoError(t, q.Put(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- q.Put(ctx, 2)
	}()

	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled Put did not return")
	}

	// The cancelled item was never enqueued.
	v, err := q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, q.Len())
}

func TestBounded_TakeCancellation(t *testing.T) {
	q := NewBounded[int](1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Take(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBounded_CloseDrainsBeforeErrClosed(t *testing.T) {
	q := NewBounded[int](2)
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, 1))
	require.NoError(t, q.Put(ctx, 2))
	q.Close()
	q.Close() // idempotent

	v, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = q.Take(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestNewBounded_InvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { NewBounded[int](0) })
}
