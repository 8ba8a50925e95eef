package mock

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/poiesic/dredge/extract"
)

// Parser is a test double for extract.Parser.
// It allows custom behavior injection via function fields.
type Parser struct {
	// ParseFunc is called by Parse if set.
	// If nil, the content is read fully and returned verbatim as text.
	ParseFunc func(ctx context.Context, content io.Reader, size int64, metadata []byte) (*extract.ParsedContent, error)

	callCount atomic.Int64
}

var _ extract.Parser = (*Parser)(nil)

// NewParser creates a mock parser with default behavior.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the content bytes as text, or delegates to ParseFunc.
func (m *Parser) Parse(ctx context.Context, content io.Reader, size int64, metadata []byte) (*extract.ParsedContent, error) {
	m.callCount.Add(1)

	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, content, size, metadata)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return &extract.ParsedContent{
		Text:      string(data),
		MediaType: "application/octet-stream",
	}, nil
}

// CallCount returns the number of times Parse was called.
func (m *Parser) CallCount() int {
	return int(m.callCount.Load())
}
