// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dredge/queue"
)

// dispatcher runs submitted tasks on a fixed-size ants pool fed through a
// bounded queue of the same capacity. submit blocks the caller once the
// queue and every worker are busy, which is the engine's sole
// backpressure mechanism: pending work never buffers unboundedly.
type dispatcher struct {
	tasks    *queue.Bounded[func()]
	pool     *ants.Pool
	inflight sync.WaitGroup
	loopDone chan struct{}
	logger   *slog.Logger
}

// newDispatcher creates the worker pool and starts the dispatch loop.
func newDispatcher(workers int, logger *slog.Logger) (*dispatcher, error) {
	// Submit blocks when all workers are busy (default ants behavior),
	// so queue capacity bounds the read-ahead beyond the workers.
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	d := &dispatcher{
		tasks:    queue.NewBounded[func()](workers),
		pool:     pool,
		loopDone: make(chan struct{}),
		logger:   logger.With("component", "dispatcher"),
	}
	go d.dispatch()
	return d, nil
}

// submit hands a task to the pool, blocking while the queue is full.
// Returns ctx.Err() if the context is cancelled first; the task is not
// enqueued in that case.
func (d *dispatcher) submit(ctx context.Context, task func()) error {
	d.inflight.Add(1)
	if err := d.tasks.Put(ctx, task); err != nil {
		d.inflight.Done()
		return err
	}
	return nil
}

// dispatch moves tasks from the queue onto pool workers until the queue is
// closed and drained.
func (d *dispatcher) dispatch() {
	defer close(d.loopDone)
	for {
		task, err := d.tasks.Take(context.Background())
		if err != nil {
			return
		}
		err = d.pool.Submit(func() {
			defer d.inflight.Done()
			task()
		})
		if err != nil {
			d.inflight.Done()
			d.logger.Error("worker pool rejected task", "err", err)
		}
	}
}

// stop refuses new work and waits for already-submitted tasks to finish,
// up to the grace period. Returns false if the grace period elapsed with
// work still in flight; the pool is then released in the background once
// the stragglers finish.
func (d *dispatcher) stop(grace time.Duration) bool {
	d.tasks.Close()
	<-d.loopDone

	drained := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		d.pool.Release()
		return true
	case <-time.After(grace):
		go func() {
			<-drained
			d.pool.Release()
		}()
		return false
	}
}
