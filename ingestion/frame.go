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
	"fmt"
	"io"

	"github.com/mus-format/mus-go/raw"
)

// Each frame on the wire is:
//
//	metadataLength : uint64, little-endian
//	metadataBytes  : metadataLength bytes (opaque, externally JSON)
//	contentLength  : uint64, little-endian
//	contentBytes   : contentLength bytes
const frameHeaderSize = 8

// readFrameLength reads one 8-byte little-endian length field into scratch.
// io.EOF is returned untouched when the stream ends before the first byte;
// a partial header surfaces as io.ErrUnexpectedEOF.
func readFrameLength(r io.Reader, scratch []byte) (uint64, error) {
	if _, err := io.ReadFull(r, scratch[:frameHeaderSize]); err != nil {
		return 0, err
	}
	v, _, err := raw.Uint64.Unmarshal(scratch[:frameHeaderSize])
	return v, err
}

// WriteFrame writes one (metadata, content) frame to w. It exists for the
// stream-packing tool and for tests; the engine itself only reads frames.
func WriteFrame(w io.Writer, metadata []byte, content io.Reader, contentLength uint64) error {
	var hdr [frameHeaderSize]byte

	raw.Uint64.Marshal(uint64(len(metadata)), hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write metadata length: %w", err)
	}
	if _, err := w.Write(metadata); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	raw.Uint64.Marshal(contentLength, hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write content length: %w", err)
	}
	if n, err := io.CopyN(w, content, int64(contentLength)); err != nil {
		return fmt.Errorf("write content: copied %d of %d bytes: %w", n, contentLength, err)
	}
	return nil
}

// WriteFrameBytes writes one frame with in-memory content.
func WriteFrameBytes(w io.Writer, metadata, content []byte) error {
	var hdr [frameHeaderSize]byte

	raw.Uint64.Marshal(uint64(len(metadata)), hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write metadata length: %w", err)
	}
	if _, err := w.Write(metadata); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	raw.Uint64.Marshal(uint64(len(content)), hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write content length: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	return nil
}
