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
	"io"
	"time"

	"github.com/poiesic/dredge/core"
)

// classifySampleSize caps how much content feeds the classifier. Byte
// frequency stabilizes well before this on real files.
const classifySampleSize = 4 * 1024

// makeDocument turns one materialized record into an indexed document:
// digest, classify, parse, store. Failures are logged and swallowed so a
// single bad record never stalls the stream; the record's content is
// always closed here, returning its buffer or deleting its spill file.
func (e *Engine) makeDocument(ctx context.Context, rec *core.Record) {
	defer rec.Content.Close()

	logger := e.logger.With("record_id", uint64(rec.Id))

	hasher, finish := core.NewContentDigest()
	if _, err := io.Copy(hasher, rec.Content); err != nil {
		logger.Error("failed to digest record content", "err", err)
		return
	}
	digest := finish()

	if _, err := rec.Content.Seek(0, io.SeekStart); err != nil {
		logger.Error("failed to rewind record content", "err", err)
		return
	}

	sampleLen := rec.Content.Size()
	if sampleLen > classifySampleSize {
		sampleLen = classifySampleSize
	}
	sample := make([]byte, sampleLen)
	if _, err := io.ReadFull(rec.Content, sample); err != nil {
		logger.Error("failed to sample record content", "err", err)
		return
	}
	fileType, err := e.classifier.Classify(ctx, sample)
	if err != nil {
		logger.Error("failed to classify record content", "err", err)
		return
	}

	if _, err := rec.Content.Seek(0, io.SeekStart); err != nil {
		logger.Error("failed to rewind record content", "err", err)
		return
	}
	parsed, err := e.parser.Parse(ctx, rec.Content, rec.Content.Size(), rec.Metadata)
	if err != nil {
		logger.Error("failed to parse record content", "err", err)
		return
	}

	doc := &core.Document{
		Id:        rec.Id,
		Metadata:  string(rec.Metadata),
		FileType:  fileType,
		MediaType: parsed.MediaType,
		Body:      parsed.Text,
		Digest:    digest,
		Size:      rec.RawSize,
		Spilled:   rec.Spilled,
		IndexedAt: time.Now(),
	}
	if err := core.ValidateDocument(doc); err != nil {
		logger.Error("produced an invalid document", "err", err)
		return
	}
	if err := e.index.PutDocuments(ctx, doc); err != nil {
		logger.Error("failed to index document", "err", err)
		return
	}
	logger.Debug("indexed document", "file_type", fileType, "size", rec.RawSize)
}
