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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/poiesic/dredge/core"
)

// spillChunkSize is the copy granularity when streaming oversized content
// to a temp file.
const spillChunkSize = 64 * 1024

// pooledContent is record content held in a checked-out pool buffer. Close
// returns the buffer to the pool; reads after Close are invalid.
type pooledContent struct {
	*bytes.Reader
	buf       []byte
	size      int64
	pool      *bufferPool
	closeOnce sync.Once
}

func (c *pooledContent) Size() int64 { return c.size }

func (c *pooledContent) Close() error {
	c.closeOnce.Do(func() {
		c.pool.release(c.buf)
	})
	return nil
}

// spillContent is record content spilled to a temp file. Close removes the
// file; the engine also sweeps leftover spill files after a drain in case
// a consumer never closed.
type spillContent struct {
	*os.File
	path      string
	size      int64
	closeOnce sync.Once
	closeErr  error
}

func (c *spillContent) Size() int64 { return c.size }

func (c *spillContent) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.File.Close()
		if err := os.Remove(c.path); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}

// materializeBuffered reads rawSize content bytes into a pool buffer. The
// buffer is released on failure, otherwise ownership passes to the
// returned Content.
func (e *Engine) materializeBuffered(ctx context.Context, in io.Reader, rawSize uint64) (core.Content, error) {
	buf, err := e.buffers.acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(in, buf[:rawSize]); err != nil {
		e.buffers.release(buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: content short of %d bytes", ErrTruncatedStream, rawSize)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return &pooledContent{
		Reader: bytes.NewReader(buf[:rawSize]),
		buf:    buf,
		size:   int64(rawSize),
		pool:   e.buffers,
	}, nil
}

// materializeSpilled streams rawSize content bytes to a pre-sized temp
// file, then reopens it read-only. The write handle is closed before the
// reopen so the read side observes a fully flushed file.
func (e *Engine) materializeSpilled(in io.Reader, rawSize uint64) (core.Content, error) {
	f, err := os.CreateTemp(e.tempDir, "dredge-*")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	path := f.Name()

	cleanup := func() {
		f.Close()
		os.Remove(path)
	}

	if err := f.Truncate(int64(rawSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("presize spill file: %w", err)
	}

	chunk := make([]byte, spillChunkSize)
	n, err := io.CopyBuffer(f, io.LimitReader(in, int64(rawSize)), chunk)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("spill content: %w", err)
	}
	if n != int64(rawSize) {
		cleanup()
		return nil, fmt.Errorf("%w: spilled %d of %d content bytes", ErrTruncatedStream, n, rawSize)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close spill file: %w", err)
	}

	r, err := os.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("reopen spill file: %w", err)
	}
	e.trackSpill(path)
	return &spillContent{File: r, path: path, size: int64(rawSize)}, nil
}
