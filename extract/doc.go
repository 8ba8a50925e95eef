// Package extract defines the content-processing collaborators the
// ingestion engine invokes per record: a content-type-aware Parser that
// pulls text out of materialized file bytes, and a statistical Classifier
// that labels the file type from a raw byte sample.
//
// The engine treats both as opaque services. Implementations live in
// subpackages: extract/langchain (document-loader based parsing),
// extract/bytefreq (byte-frequency linear model), and extract/mock
// (test doubles).
package extract
