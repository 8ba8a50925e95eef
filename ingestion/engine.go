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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/poiesic/dredge/core"
	"github.com/poiesic/dredge/extract"
	"github.com/poiesic/dredge/storage"
)

const (
	// DefaultLargeFileThreshold is the content size above which a record
	// spills to disk instead of occupying a pool buffer.
	DefaultLargeFileThreshold = 16 * 1024 * 1024

	// DefaultDrainGrace bounds how long Ingest waits for in-flight
	// workers after the stream ends.
	DefaultDrainGrace = time.Hour

	// idStride leaves one odd id after every record id for content
	// derived from it later (extracted archive members, converted text).
	idStride = 2
)

// Engine reads a carve stream and indexes a document per record. A single
// reader goroutine owns the stream; parsing, classification, and indexing
// run on a bounded worker pool behind it.
type Engine struct {
	index      storage.DocumentRepository
	parser     extract.Parser
	classifier extract.Classifier

	workers    int
	threshold  uint64
	tempDir    string
	drainGrace time.Duration
	logger     *slog.Logger

	buffers  *bufferPool
	progress progress

	mu     sync.Mutex
	spills map[string]struct{}
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWorkers sets the worker pool size. Defaults to half the CPUs,
// minimum one.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		e.workers = n
		return nil
	}
}

// WithLargeFileThreshold sets the content size, in bytes, above which a
// record spills to a temp file. It is also the pool buffer capacity.
func WithLargeFileThreshold(bytes uint64) Option {
	return func(e *Engine) error {
		if bytes < 1 {
			return fmt.Errorf("large file threshold must be positive")
		}
		e.threshold = bytes
		return nil
	}
}

// WithTempDir sets the directory for spill files. Defaults to the
// system temp directory.
func WithTempDir(dir string) Option {
	return func(e *Engine) error {
		e.tempDir = dir
		return nil
	}
}

// WithDrainGrace bounds the post-stream wait for in-flight workers.
func WithDrainGrace(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("drain grace must be positive")
		}
		e.drainGrace = d
		return nil
	}
}

// WithLogger sets the engine's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine wires an engine over a document repository, a content parser,
// and a file-type classifier.
func NewEngine(index storage.DocumentRepository, parser extract.Parser, classifier extract.Classifier, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if parser == nil {
		return nil, ErrParserRequired
	}
	if classifier == nil {
		return nil, ErrClassifierRequired
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	e := &Engine{
		index:      index,
		parser:     parser,
		classifier: classifier,
		workers:    workers,
		threshold:  DefaultLargeFileThreshold,
		tempDir:    os.TempDir(),
		drainGrace: DefaultDrainGrace,
		logger:     slog.Default(),
		spills:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "ingestion")

	// Workers+2 buffers keep every worker fed while the reader fills one
	// ahead and one sits free to absorb jitter.
	e.buffers = newBufferPool(e.workers+2, int(e.threshold))
	return e, nil
}

// Progress returns a snapshot of the engine's counters. Safe to call
// concurrently with Ingest.
func (e *Engine) Progress() Progress {
	return e.progress.snapshot()
}

// Ingest consumes the stream until end of stream, an unrecoverable read
// error, or context cancellation. A nil return means the stream ended
// cleanly on a frame boundary; in-flight records are drained before
// returning either way. Per-record processing failures are logged, never
// escalated.
func (e *Engine) Ingest(ctx context.Context, in io.Reader) error {
	workers, err := newDispatcher(e.workers, e.logger)
	if err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}

	readErr := e.readRecords(ctx, in, workers)

	if !workers.stop(e.drainGrace) {
		e.logger.Warn("drain grace elapsed with workers still busy",
			"grace", e.drainGrace)
	}
	e.sweepSpills()
	return readErr
}

func (e *Engine) readRecords(ctx context.Context, in io.Reader, workers *dispatcher) error {
	scratch := make([]byte, frameHeaderSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		filepos := e.progress.bytesRead.Load()

		metaLen, err := readFrameLength(in, scratch)
		if err != nil {
			if errors.Is(err, io.EOF) && filepos == e.progress.bytesRead.Load() {
				return nil
			}
			return fmt.Errorf("%w: at byte %d: %v", ErrTruncatedStream, filepos, err)
		}
		e.progress.bytesRead.Add(frameHeaderSize)

		metadata := make([]byte, metaLen)
		if _, err := io.ReadFull(in, metadata); err != nil {
			return fmt.Errorf("%w: metadata at byte %d short of %d bytes: %v",
				ErrTruncatedStream, filepos, metaLen, err)
		}
		e.progress.bytesRead.Add(metaLen)

		rawSize, err := readFrameLength(in, scratch)
		if err != nil {
			return fmt.Errorf("%w: content length at byte %d: %v", ErrTruncatedStream, filepos, err)
		}
		e.progress.bytesRead.Add(frameHeaderSize)

		spilled := rawSize > e.threshold
		var content core.Content
		if spilled {
			content, err = e.materializeSpilled(in, rawSize)
		} else {
			content, err = e.materializeBuffered(ctx, in, rawSize)
		}
		if err != nil {
			if errors.Is(err, ErrTruncatedStream) {
				return fmt.Errorf("record at byte %d: %w", filepos, err)
			}
			return fmt.Errorf("materialize record at byte %d: %w", filepos, err)
		}

		rec := &core.Record{
			Id:       core.ID(e.progress.filesRead.Load() * idStride),
			Metadata: metadata,
			RawSize:  rawSize,
			Content:  content,
			Spilled:  spilled,
		}

		if err := workers.submit(ctx, func() { e.makeDocument(context.Background(), rec) }); err != nil {
			content.Close()
			return err
		}

		e.progress.filesRead.Add(1)
		e.progress.fileBytesRead.Add(rawSize)
		before := e.progress.bytesRead.Add(rawSize) - rawSize
		if (before+rawSize)>>30 > before>>30 {
			p := e.progress.snapshot()
			e.logger.Info("ingestion progress",
				"bytes_read", p.BytesRead,
				"file_bytes_read", p.FileBytesRead,
				"files_read", p.FilesRead)
		}
	}
}

func (e *Engine) trackSpill(path string) {
	e.mu.Lock()
	e.spills[path] = struct{}{}
	e.mu.Unlock()
}

// sweepSpills removes any spill files still on disk after a drain. Spill
// content normally deletes its own file on Close; the sweep covers
// consumers that never closed.
func (e *Engine) sweepSpills() {
	e.mu.Lock()
	paths := e.spills
	e.spills = make(map[string]struct{})
	e.mu.Unlock()

	for path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("failed to remove spill file", "path", path, "err", err)
		}
	}
}
