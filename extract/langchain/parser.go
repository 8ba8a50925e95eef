package langchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/dredge/extract"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// sniffLen is the number of leading bytes used for media-type detection.
const sniffLen = 512

// Parser implements extract.Parser using langchaingo document loaders.
// The media type is sniffed from the content prefix; the carving tool's
// metadata is consulted only for a filename hint (CSV routing).
type Parser struct {
	logger *slog.Logger
}

var _ extract.Parser = (*Parser)(nil)

// NewParser creates a document-loader backed parser.
func NewParser() *Parser {
	return &Parser{
		logger: slog.Default().With("component", "langchain-parser"),
	}
}

// Parse sniffs the content type and routes to the matching loader.
// Binary content with no text-bearing loader yields an empty body and is
// not an error.
func (p *Parser) Parse(ctx context.Context, content io.Reader, size int64, metadata []byte) (*extract.ParsedContent, error) {
	prefix := make([]byte, sniffLen)
	n, err := io.ReadFull(content, prefix)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	prefix = prefix[:n]

	mediaType := http.DetectContentType(prefix)
	result := &extract.ParsedContent{MediaType: mediaType}
	if n == 0 {
		return result, nil
	}

	// The sniffed prefix has already been consumed; stitch it back on.
	rejoined := io.MultiReader(bytes.NewReader(prefix), content)

	var loader documentloaders.Loader
	switch {
	case strings.HasPrefix(mediaType, "text/html"):
		loader = documentloaders.NewHTML(rejoined)
	case strings.HasPrefix(mediaType, "text/") && hasNameSuffix(metadata, ".csv"):
		loader = documentloaders.NewCSV(rejoined)
	case strings.HasPrefix(mediaType, "text/"),
		strings.HasPrefix(mediaType, "application/json"),
		strings.HasPrefix(mediaType, "application/xml"):
		loader = documentloaders.NewText(rejoined)
	default:
		// No text to extract from binary content.
		return result, nil
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result.Text = joinPages(docs)
	return result, nil
}

// hasNameSuffix reports whether the carve metadata names a file ending in
// suffix. The metadata is opaque JSON; a missing or unparseable name is
// simply no hint.
func hasNameSuffix(metadata []byte, suffix string) bool {
	var hints struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(metadata, &hints); err != nil {
		return false
	}
	name := hints.Name
	if name == "" {
		name = hints.Path
	}
	return strings.HasSuffix(strings.ToLower(name), suffix)
}

func joinPages(docs []schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.PageContent != "" {
			parts = append(parts, doc.PageContent)
		}
	}
	return strings.Join(parts, "\n\n")
}
