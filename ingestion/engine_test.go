package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/dredge/core"
	"github.com/poiesic/dredge/extract/mock"
	"github.com/poiesic/dredge/storage"
	badgerstore "github.com/poiesic/dredge/storage/badger"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, storage.DocumentRepository) {
	t.Helper()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	defaults := []Option{
		WithWorkers(2),
		WithLargeFileThreshold(1024),
		WithTempDir(t.TempDir()),
		WithDrainGrace(10 * time.Second),
	}
	engine, err := NewEngine(repo, mock.NewParser(), mock.NewClassifier(), append(defaults, opts...)...)
	require.NoError(t, err)
	return engine, repo
}

func TestNewEngine_Validation(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	t.Run("nil index", func(t *testing.T) {
		_, err := NewEngine(nil, mock.NewParser(), mock.NewClassifier())
		require.ErrorIs(t, err, ErrIndexRequired)
	})
	t.Run("nil parser", func(t *testing.T) {
		_, err := NewEngine(repo, nil, mock.NewClassifier())
		require.ErrorIs(t, err, ErrParserRequired)
	})
	t.Run("nil classifier", func(t *testing.T) {
		_, err := NewEngine(repo, mock.NewParser(), nil)
		require.ErrorIs(t, err, ErrClassifierRequired)
	})
	t.Run("bad workers", func(t *testing.T) {
		_, err := NewEngine(repo, mock.NewParser(), mock.NewClassifier(), WithWorkers(0))
		require.Error(t, err)
	})
}

func TestEngine_IngestIndexesEveryRecord(t *testing.T) {
	engine, repo := newTestEngine(t)

	var stream bytes.Buffer
	var wantBytes uint64
	var wantFileBytes uint64
	const records = 20
	for i := 0; i < records; i++ {
		metadata := []byte(fmt.Sprintf(`{"name":"file-%d.txt"}`, i))
		content := bytes.Repeat([]byte{byte('a' + i%26)}, 50+i)
		require.NoError(t, WriteFrameBytes(&stream, metadata, content))
		wantBytes += 16 + uint64(len(metadata)) + uint64(len(content))
		wantFileBytes += uint64(len(content))
	}

	require.NoError(t, engine.Ingest(context.Background(), &stream))

	p := engine.Progress()
	assert.Equal(t, uint64(records), p.FilesRead)
	assert.Equal(t, wantBytes, p.BytesRead)
	assert.Equal(t, wantFileBytes, p.FileBytesRead)

	count, err := repo.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(records), count)
}

func TestEngine_RecordIdsLeaveRoomForDerivedContent(t *testing.T) {
	engine, repo := newTestEngine(t)

	var stream bytes.Buffer
	for i := 0; i < 5; i++ {
		require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), []byte("content")))
	}
	require.NoError(t, engine.Ingest(context.Background(), &stream))

	for i := 0; i < 5; i++ {
		doc, err := repo.GetDocument(context.Background(), core.ID(i*2))
		require.NoError(t, err)
		assert.Equal(t, core.ID(i*2), doc.Id)
	}
	_, err := repo.GetDocument(context.Background(), core.ID(1))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_EmptyStreamIsClean(t *testing.T) {
	engine, _ := newTestEngine(t)
	require.NoError(t, engine.Ingest(context.Background(), bytes.NewReader(nil)))
	assert.Zero(t, engine.Progress().FilesRead)
}

func TestEngine_Truncation(t *testing.T) {
	t.Run("partial header", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		err := engine.Ingest(context.Background(), bytes.NewReader([]byte{1, 2, 3}))
		require.ErrorIs(t, err, ErrTruncatedStream)
	})

	t.Run("short metadata", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		var stream bytes.Buffer
		require.NoError(t, WriteFrameBytes(&stream, []byte("0123456789"), []byte("x")))
		err := engine.Ingest(context.Background(), bytes.NewReader(stream.Bytes()[:12]))
		require.ErrorIs(t, err, ErrTruncatedStream)
	})

	t.Run("short content", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		var stream bytes.Buffer
		require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), bytes.Repeat([]byte("c"), 100)))
		err := engine.Ingest(context.Background(), bytes.NewReader(stream.Bytes()[:stream.Len()-40]))
		require.ErrorIs(t, err, ErrTruncatedStream)
	})

	t.Run("records before the cut are still indexed", func(t *testing.T) {
		engine, repo := newTestEngine(t)
		var stream bytes.Buffer
		require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), []byte("first")))
		require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), bytes.Repeat([]byte("c"), 100)))
		err := engine.Ingest(context.Background(), bytes.NewReader(stream.Bytes()[:stream.Len()-40]))
		require.ErrorIs(t, err, ErrTruncatedStream)

		count, err := repo.CountDocuments(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
}

func TestEngine_SpillThreshold(t *testing.T) {
	tempDir := t.TempDir()
	engine, repo := newTestEngine(t, WithLargeFileThreshold(100), WithTempDir(tempDir))

	var stream bytes.Buffer
	// Exactly at the threshold stays in a pool buffer; one past spills.
	require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), bytes.Repeat([]byte("b"), 100)))
	require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), bytes.Repeat([]byte("s"), 101)))

	require.NoError(t, engine.Ingest(context.Background(), &stream))

	buffered, err := repo.GetDocument(context.Background(), core.ID(0))
	require.NoError(t, err)
	assert.False(t, buffered.Spilled)
	assert.Equal(t, uint64(100), buffered.Size)

	spilled, err := repo.GetDocument(context.Background(), core.ID(2))
	require.NoError(t, err)
	assert.True(t, spilled.Spilled)
	assert.Equal(t, uint64(101), spilled.Size)

	// Spill files are gone once ingestion has drained.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngine_DocumentFields(t *testing.T) {
	engine, repo := newTestEngine(t)

	var stream bytes.Buffer
	metadata := []byte(`{"name":"note.txt","offset":4096}`)
	content := []byte("the quick brown fox")
	require.NoError(t, WriteFrameBytes(&stream, metadata, content))
	require.NoError(t, engine.Ingest(context.Background(), &stream))

	doc, err := repo.GetDocument(context.Background(), core.ID(0))
	require.NoError(t, err)
	assert.Equal(t, string(metadata), doc.Metadata)
	assert.Equal(t, string(content), doc.Body)
	assert.Equal(t, "unknown", doc.FileType)
	assert.Equal(t, core.DigestOfContent(content), doc.Digest)
	assert.False(t, doc.IndexedAt.IsZero())
}

func TestEngine_Cancellation(t *testing.T) {
	engine, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stream bytes.Buffer
	require.NoError(t, WriteFrameBytes(&stream, []byte("{}"), []byte("content")))
	err := engine.Ingest(ctx, &stream)
	require.ErrorIs(t, err, context.Canceled)
}
