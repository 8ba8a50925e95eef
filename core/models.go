package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"io"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
//
// The stream reader assigns record ids with a stride of 2: primary records
// always carry even ids, and the adjacent odd id is reserved for content a
// worker may derive from the record (embedded or extracted sub-content).
type ID uint64

// DigestOfContent computes a hex-encoded BLAKE2b-128 digest of data.
// Identical content always produces an identical digest.
func DigestOfContent(data []byte) string {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NewContentDigest returns a hash suitable for streaming content into and
// a function rendering the accumulated digest.
func NewContentDigest() (io.Writer, func() string) {
	h, _ := blake2b.New(16, nil)
	return h, func() string { return hex.EncodeToString(h.Sum(nil)) }
}

// Content is a readable byte source for a record's carved bytes: either a
// view over a pooled buffer or a handle to a spilled temp file. Close
// releases the underlying resource (returns the buffer to its pool, or
// closes and deletes the temp file) and must be called exactly once by
// whichever component finishes consuming the content.
type Content interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer

	// Size returns the number of content bytes.
	Size() int64
}

// Record is one logical unit read from the carve stream: opaque metadata
// plus materialized content. Ownership of Content transfers from the reader
// to the worker at submission time.
type Record struct {
	Id       ID
	Metadata []byte // JSON produced by the external carving tool, passed through uninterpreted
	RawSize  uint64 // declared content length from the frame header
	Content  Content
	Spilled  bool // content lives in a temp file rather than a pooled buffer
}

// DerivedId returns the odd id reserved next to this record's id for
// derived content. The derivation itself is a worker capability; the id
// space stays compatible whether or not it is exercised.
func (r *Record) DerivedId() ID {
	return r.Id + 1
}

// Document is the indexable result of processing one record.
type Document struct {
	Id        ID
	Metadata  string // carve-tool JSON metadata, verbatim
	FileType  string // statistical classifier label
	MediaType string // sniffed media type
	Body      string // extracted text
	Digest    string // BLAKE2b-128 of the raw content
	Size      uint64 // raw content length in bytes
	Spilled   bool
	IndexedAt time.Time
}
