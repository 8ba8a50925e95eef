package extract

import (
	"context"
	"io"
)

// ParsedContent is the result of text extraction from file bytes.
type ParsedContent struct {
	// Text is the extracted text, empty if the content carries none.
	Text string

	// MediaType is the sniffed media type, e.g. "text/html; charset=utf-8".
	MediaType string
}

// Parser extracts text and a media type from materialized file content.
// Implementations must be thread-safe: the engine runs one Parse per
// worker concurrently.
type Parser interface {
	// Parse reads up to size bytes of content and extracts what text it
	// can. The reader is positioned at the start of the content. The
	// metadata produced by the carving tool is passed through for
	// implementations that can use hints from it.
	Parse(ctx context.Context, content io.Reader, size int64, metadata []byte) (*ParsedContent, error)
}

// Classifier assigns a file-type label to a raw byte sample.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// Classify returns the label of the most likely file type for the
	// sample, e.g. "jpeg", "pdf", "text".
	Classify(ctx context.Context, sample []byte) (string, error)
}
