package storage

import (
	"context"

	"github.com/poiesic/dredge/core"
)

// DocumentRepository is the index writer the ingestion workers hand
// produced documents to. Implementations must be thread-safe and support
// concurrent writers.
type DocumentRepository interface {
	// PutDocuments writes one or more documents to the index, setting
	// IndexedAt if not already set. Existing documents with the same id
	// are overwritten.
	PutDocuments(ctx context.Context, docs ...*core.Document) error

	// GetDocument retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their ids.
	// Returns only the documents that exist (no error for missing ones).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentsByType retrieves ids of documents carrying the given
	// classifier label, in ascending id order.
	GetDocumentsByType(ctx context.Context, fileType string) ([]core.ID, error)

	// CountDocuments returns the number of documents in the index.
	CountDocuments(ctx context.Context) (uint64, error)

	// Close closes the repository and releases resources.
	Close() error
}
