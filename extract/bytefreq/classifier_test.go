package bytefreq

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestModel writes a model favoring ASCII bytes for "text" and high
// bytes for "binary".
func writeTestModel(t *testing.T) string {
	t.Helper()

	textWeights := make([]float64, 256)
	binaryWeights := make([]float64, 256)
	for i := 0x20; i < 0x7f; i++ {
		textWeights[i] = 1
	}
	for i := 0x80; i < 0x100; i++ {
		binaryWeights[i] = 1
	}

	m := model{Classes: []class{
		{Label: "text", Weights: textWeights},
		{Label: "binary", Weights: binaryWeights},
	}}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(writeTestModel(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"text", "binary"}, c.Labels())
}

func TestNewClassifier_MissingFile(t *testing.T) {
	_, err := NewClassifier(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestNewClassifier_InvalidModel(t *testing.T) {
	dir := t.TempDir()

	t.Run("not json", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
		_, err := NewClassifier(path)
		assert.Error(t, err)
	})

	t.Run("no classes", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"classes":[]}`), 0644))
		_, err := NewClassifier(path)
		assert.ErrorIs(t, err, ErrEmptyModel)
	})

	t.Run("short weights", func(t *testing.T) {
		path := filepath.Join(dir, "short.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"classes":[{"label":"x","weights":[1,2,3]}]}`), 0644))
		_, err := NewClassifier(path)
		assert.ErrorIs(t, err, ErrBadWeightCount)
	})
}

func TestClassify(t *testing.T) {
	c, err := NewClassifier(writeTestModel(t))
	require.NoError(t, err)
	ctx := context.Background()

	label, err := c.Classify(ctx, []byte("plain readable english text"))
	require.NoError(t, err)
	assert.Equal(t, "text", label)

	label, err = c.Classify(ctx, bytes.Repeat([]byte{0xff, 0xd8, 0xe0, 0x91}, 32))
	require.NoError(t, err)
	assert.Equal(t, "binary", label)
}

func TestClassify_EmptySample(t *testing.T) {
	c, err := NewClassifier(writeTestModel(t))
	require.NoError(t, err)

	label, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, UnknownLabel, label)
}
