package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a document repository is not provided.
	ErrIndexRequired = errors.New("document repository required")

	// ErrParserRequired is returned when a parser is not provided.
	ErrParserRequired = errors.New("parser required")

	// ErrClassifierRequired is returned when a classifier is not provided.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrTruncatedStream indicates the input ended inside a frame: a
	// declared length exceeded the bytes actually available.
	ErrTruncatedStream = errors.New("stream truncated mid-frame")
)
