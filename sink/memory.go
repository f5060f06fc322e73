package sink

import "sync"

// Memory is an in-process map-backed Sink, standing in for an external
// durable store in tests.
type Memory struct {
	mu       sync.Mutex
	seqs     map[string]uint64
	batches  map[string][]Batch
	sidecars map[string][]byte
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{
		seqs:     make(map[string]uint64),
		batches:  make(map[string][]Batch),
		sidecars: make(map[string][]byte),
	}
}

// EnsureKey implements Sink.
func (m *Memory) EnsureKey(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[channel]; !ok {
		m.batches[channel] = nil
	}
	return nil
}

// AppendBatch implements Sink.
func (m *Memory) AppendBatch(batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.Channel] = append(m.batches[batch.Channel], batch)
	m.seqs[batch.Channel]++
	return nil
}

// SetSidecar implements Sink.
func (m *Memory) SetSidecar(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sidecars[key] = value
	return nil
}

// Close implements Sink.
func (m *Memory) Close() error { return nil }

// Batches returns every batch appended to channel, in append order.
// A test helper, not part of the Sink interface.
func (m *Memory) Batches(channel string) []Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Batch(nil), m.batches[channel]...)
}

// Sidecar returns a previously-set sidecar value, and whether it exists.
func (m *Memory) Sidecar(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sidecars[key]
	return v, ok
}

// Concat returns every batch's payload for channel concatenated in
// append order, the logical "read back the full sequence" operation,
// useful for round-trip tests.
func (m *Memory) Concat(channel string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, b := range m.batches[channel] {
		out = append(out, b.Payload...)
	}
	return out
}
