package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/dredge/extract"
)

// Classifier is a test double for extract.Classifier.
type Classifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, every sample is labeled "unknown".
	ClassifyFunc func(ctx context.Context, sample []byte) (string, error)

	callCount atomic.Int64
}

var _ extract.Classifier = (*Classifier)(nil)

// NewClassifier creates a mock classifier with default behavior.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify labels the sample "unknown", or delegates to ClassifyFunc.
func (m *Classifier) Classify(ctx context.Context, sample []byte) (string, error) {
	m.callCount.Add(1)

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, sample)
	}
	return "unknown", nil
}

// CallCount returns the number of times Classify was called.
func (m *Classifier) CallCount() int {
	return int(m.callCount.Load())
}
