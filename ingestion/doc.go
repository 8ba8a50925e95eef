// Package ingestion implements the carve-stream ingestion engine.
//
// The Engine consumes a binary stream of length-framed (metadata, content)
// records produced by an external file-carving tool, materializes each
// record's content into a pooled buffer or a spilled temp file depending
// on size, and hands it to a bounded pool of workers that parse, classify,
// digest, and index it.
//
// Backpressure is structural: the reader blocks on buffer acquisition and
// on work submission when the pool is saturated, so nothing buffers
// unboundedly ahead of the workers.
package ingestion
