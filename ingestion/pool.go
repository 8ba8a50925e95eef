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

	"github.com/poiesic/dredge/queue"
)

// bufferPool recycles a fixed set of equally sized byte buffers across
// record materializations, bounding peak memory. A buffer belongs to the
// pool except while checked out to exactly one in-flight record.
//
// Buffers are handed out dirty: only the prefix a consumer filled is
// defined, the rest holds bytes from earlier checkouts.
type bufferPool struct {
	free    *queue.Bounded[[]byte]
	bufSize int
}

// newBufferPool pre-allocates count buffers of bufSize bytes each.
func newBufferPool(count, bufSize int) *bufferPool {
	p := &bufferPool{
		free:    queue.NewBounded[[]byte](count),
		bufSize: bufSize,
	}
	for i := 0; i < count; i++ {
		// Cannot block: the queue holds exactly count slots.
		_ = p.free.Put(context.Background(), make([]byte, bufSize))
	}
	return p
}

// acquire checks a buffer out, blocking until one is free or ctx is done.
func (p *bufferPool) acquire(ctx context.Context) ([]byte, error) {
	return p.free.Take(ctx)
}

// release returns a buffer to the pool. Delivery is unconditional: release
// uses a background context so a checked-out buffer can never be lost to
// cancellation. Must be called exactly once per acquired buffer.
func (p *bufferPool) release(buf []byte) {
	_ = p.free.Put(context.Background(), buf)
}
