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


package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Take once the queue is closed and drained.
var ErrClosed = errors.New("queue closed")

// Bounded is a FIFO queue with a capacity fixed at construction.
//
// Put blocks until space is available; it never rejects or drops an item.
// Take blocks until an item is available. Both unblock with an error when
// the caller's context is cancelled, leaving the queue itself intact.
type Bounded[T any] struct {
	ch        chan T
	closeOnce sync.Once
}

// NewBounded creates a queue holding at most capacity items.
// Panics if capacity < 1.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		panic("queue: capacity must be at least 1")
	}
	return &Bounded[T]{ch: make(chan T, capacity)}
}

// Put inserts v, blocking while the queue is full. It returns ctx.Err() if
// the context is cancelled first; the item is not enqueued in that case, so
// the caller keeps ownership of it.
//
// Put must not be called after Close.
func (q *Bounded[T]) Put(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes and returns the oldest item, blocking while the queue is
// empty. After Close, Take keeps returning buffered items until the queue
// is drained and then returns ErrClosed.
func (q *Bounded[T]) Take(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-q.ch:
		if !ok {
			return zero, ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close marks the queue as finished. Items already enqueued remain
// available to Take. Close is idempotent.
func (q *Bounded[T]) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}

// Len returns the number of buffered items.
func (q *Bounded[T]) Len() int { return len(q.ch) }

// Cap returns the fixed capacity.
func (q *Bounded[T]) Cap() int { return cap(q.ch) }
