package ingestion

import "sync/atomic"

// progress holds the engine's monotonically increasing counters. Only the
// reader goroutine writes them; atomics guarantee visibility to the
// caller's status reads.
type progress struct {
	bytesRead     atomic.Uint64
	fileBytesRead atomic.Uint64
	filesRead     atomic.Uint64
}

// Progress is a point-in-time snapshot of the engine's counters.
type Progress struct {
	// BytesRead is the cumulative number of stream bytes consumed,
	// headers included.
	BytesRead uint64

	// FileBytesRead is the cumulative number of content bytes consumed.
	FileBytesRead uint64

	// FilesRead is the number of records read from the stream.
	FilesRead uint64
}

func (p *progress) snapshot() Progress {
	return Progress{
		BytesRead:     p.bytesRead.Load(),
		FileBytesRead: p.fileBytesRead.Load(),
		FilesRead:     p.filesRead.Load(),
	}
}
