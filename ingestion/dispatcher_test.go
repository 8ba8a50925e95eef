package ingestion

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsAllTasks(t *testing.T) {
	d, err := newDispatcher(4, slog.Default())
	require.NoError(t, err)

	var ran atomic.Int64
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, d.submit(ctx, func() { ran.Add(1) }))
	}

	assert.True(t, d.stop(5*time.Second))
	assert.Equal(t, int64(100), ran.Load())
}

func TestDispatcher_SubmitBlocksWhenSaturated(t *testing.T) {
	d, err := newDispatcher(1, slog.Default())
	require.NoError(t, err)

	release := make(chan struct{})
	ctx := context.Background()

	// Occupy the only worker, then fill the single queue slot.
	require.NoError(t, d.submit(ctx, func() { <-release }))
	require.NoError(t, d.submit(ctx, func() {}))

	submitted := make(chan struct{})
	go func() {
		// May also land in the queue slot freed by the dispatch loop,
		// so saturate with two more.
		d.submit(ctx, func() {})
		d.submit(ctx, func() {})
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("submit returned while the pool was saturated")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case <-submitted:
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not unblock after workers freed up")
	}
	assert.True(t, d.stop(5*time.Second))
}

func TestDispatcher_SubmitCancellation(t *testing.T) {
	d, err := newDispatcher(1, slog.Default())
	require.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, d.submit(context.Background(), func() { <-release }))
	require.NoError(t, d.submit(context.Background(), func() {}))
	d.submit(context.Background(), func() {}) // fills the refilled queue slot

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = d.submit(ctx, func() {})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.True(t, d.stop(5*time.Second))
}

func TestDispatcher_StopReportsOverrun(t *testing.T) {
	d, err := newDispatcher(1, slog.Default())
	require.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, d.submit(context.Background(), func() { <-release }))

	assert.False(t, d.stop(20*time.Millisecond))
	close(release)
}
