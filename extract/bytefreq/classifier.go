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


package bytefreq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/dredge/extract"
)

// UnknownLabel is returned for samples the model cannot score.
const UnknownLabel = "unknown"

// class is one trained file type: a label plus a weight per byte value.
type class struct {
	Label   string    `json:"label"`
	Weights []float64 `json:"weights"`
}

// model is the on-disk JSON layout of a trained model file.
type model struct {
	Classes []class `json:"classes"`
}

// Classifier implements extract.Classifier with a linear model over byte
// unigram frequencies: each class scores a sample by the dot product of
// its weight vector with the sample's normalized byte histogram, and the
// highest score wins.
type Classifier struct {
	classes []class
}

var _ extract.Classifier = (*Classifier)(nil)

// NewClassifier loads a model file and returns a classifier backed by it.
func NewClassifier(modelFile string) (*Classifier, error) {
	data, err := os.ReadFile(modelFile)
	if err != nil {
		return nil, fmt.Errorf("read model file %s: %w", modelFile, err)
	}

	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", modelFile, err)
	}
	if len(m.Classes) == 0 {
		return nil, fmt.Errorf("model file %s: %w", modelFile, ErrEmptyModel)
	}
	for _, c := range m.Classes {
		if c.Label == "" {
			return nil, fmt.Errorf("model file %s: %w", modelFile, ErrUnlabeledClass)
		}
		if len(c.Weights) != 256 {
			return nil, fmt.Errorf("model file %s: class %q: %w (got %d)",
				modelFile, c.Label, ErrBadWeightCount, len(c.Weights))
		}
	}

	return &Classifier{classes: m.Classes}, nil
}

// NewDefaultClassifier returns a classifier with a built-in two-class
// model that separates text from binary content by printable-byte mass.
// It stands in when no trained model file is available.
func NewDefaultClassifier() *Classifier {
	text := class{Label: "text", Weights: make([]float64, 256)}
	binary := class{Label: "binary", Weights: make([]float64, 256)}
	for b := 0; b < 256; b++ {
		switch {
		case b == '\n' || b == '\r' || b == '\t':
			text.Weights[b] = 1
		case b >= 0x20 && b < 0x7f:
			text.Weights[b] = 1
		default:
			binary.Weights[b] = 1
		}
	}
	return &Classifier{classes: []class{text, binary}}
}

// Classify scores the sample against every class and returns the label of
// the best-scoring one. Empty samples are UnknownLabel.
func (c *Classifier) Classify(ctx context.Context, sample []byte) (string, error) {
	if len(sample) == 0 {
		return UnknownLabel, nil
	}

	var hist [256]float64
	for _, b := range sample {
		hist[b]++
	}
	total := float64(len(sample))
	for i := range hist {
		hist[i] /= total
	}

	best := UnknownLabel
	bestScore := 0.0
	for i, cl := range c.classes {
		var score float64
		for b, freq := range hist {
			if freq != 0 {
				score += cl.Weights[b] * freq
			}
		}
		if i == 0 || score > bestScore {
			best = cl.Label
			bestScore = score
		}
	}
	return best, nil
}

// Labels returns the labels the model can assign, in model order.
func (c *Classifier) Labels() []string {
	labels := make([]string, len(c.classes))
	for i, cl := range c.classes {
		labels[i] = cl.Label
	}
	return labels
}
