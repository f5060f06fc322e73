// Package sink defines the durable store the ingester drains into: a
// mapping from channel key to an appendable ordered sequence of numeric
// arrays, with two concrete adapters (embedded badger, in-memory).
package sink

import "fmt"

// Batch is one flush's worth of data for a single channel key:
// accumulated frames concatenated into one append. LogicalIndices
// carries the frame logical index alongside the payload so a downstream
// reader can deduplicate after a crash-induced re-ingest.
type Batch struct {
	Channel        string
	LogicalIndices []uint64
	Payload        []byte
}

// Sink is the durable store's interface. Implementations must make
// EnsureKey idempotent and AppendBatch safe to call more than once with
// overlapping LogicalIndices, since duplicates may occur after a crash
// mid-flush.
type Sink interface {
	// EnsureKey creates channel's key if it doesn't already exist, with
	// an empty sequence. Sidecar keys are written only by SetSidecar.
	EnsureKey(channel string) error

	// AppendBatch durably appends batch to its channel's sequence.
	AppendBatch(batch Batch) error

	// SetSidecar stores a small fixed piece of metadata alongside a
	// channel, e.g. image mode's "image_shape" key holding (H,W,C).
	SetSidecar(key string, value []byte) error

	Close() error
}

// ErrUnknownChannel is returned by adapters that require EnsureKey to
// have been called before the first AppendBatch for a channel.
var ErrUnknownChannel = fmt.Errorf("sink: channel not initialized, call EnsureKey first")
