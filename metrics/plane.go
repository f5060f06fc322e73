// Package metrics is the metrics plane: a typed shared-state record of
// the counters, timings, and heartbeats that producer, journal writer,
// and ingester all update concurrently. Every field is a fixed-size
// atomic so there is no tearing and no lock on any actor's hot path;
// readers get last-writer-wins per key.
package metrics

import (
	"sync/atomic"
	"time"
)

// Plane holds the per-actor counters, timings, and heartbeats. The zero
// value is ready to use.
type Plane struct {
	// producer
	ProducerFPS     atomic.Uint64 // bits of a float64, see the helpers in floats.go
	PublishAvgMs    atomic.Uint64
	PublishP95Ms    atomic.Uint64
	LastWriteIdx    atomic.Uint64

	// consumer
	ConsumerFPS      atomic.Uint64
	PlotTickAvgMs    atomic.Uint64
	GPUUploadAvgMs   atomic.Uint64
	FramesLag        atomic.Uint64
	DropsEst         atomic.Uint64

	// writer
	WriterActiveBin    atomic.Uint64 // 0 or 1, which of the two journal files
	WriterTotalFrames  atomic.Uint64
	WriterRotations    atomic.Uint64
	WriterFPSEstimate  atomic.Uint64
	WriterAlive        atomic.Bool
	WriterLastError    atomic.Pointer[string]
	WriterHeartbeatNs  atomic.Int64

	// ingester
	IngestFramesIngested atomic.Uint64
	IngestBytesRead      atomic.Uint64
	IngestBatchesFlushed atomic.Uint64
	IngestFPSEstimate    atomic.Uint64
	IngestAlive          atomic.Bool
	IngestLastError      atomic.Pointer[string]
	IngestHeartbeatNs    atomic.Int64

	// producer/consumer heartbeats, pulsed at >=1 Hz by each actor
	ProducerHeartbeatNs atomic.Int64
	ConsumerHeartbeatNs atomic.Int64
}

// New returns a ready-to-use, zeroed Plane.
func New() *Plane {
	return &Plane{}
}

// StaleAfter is the liveness window: a heartbeat with no update in more
// than this is the external indicator of a dead actor.
const StaleAfter = 3 * time.Second

// Alive reports whether a heartbeat (a value previously written by
// Heartbeat*) is still within StaleAfter of now.
func Alive(heartbeatNs int64) bool {
	if heartbeatNs == 0 {
		return false
	}
	return time.Since(time.Unix(0, heartbeatNs)) < StaleAfter
}

// HeartbeatWriter records a liveness pulse for the journal writer actor.
func (p *Plane) HeartbeatWriter(now time.Time) {
	p.WriterHeartbeatNs.Store(now.UnixNano())
}

// HeartbeatIngest records a liveness pulse for the ingester actor.
func (p *Plane) HeartbeatIngest(now time.Time) {
	p.IngestHeartbeatNs.Store(now.UnixNano())
}

// HeartbeatProducer records a liveness pulse for the producer actor.
func (p *Plane) HeartbeatProducer(now time.Time) {
	p.ProducerHeartbeatNs.Store(now.UnixNano())
}

// HeartbeatConsumer records a liveness pulse for a consumer.
func (p *Plane) HeartbeatConsumer(now time.Time) {
	p.ConsumerHeartbeatNs.Store(now.UnixNano())
}

// WriterAliveNow combines the explicit WriterAlive flag (set true when
// the writer's Run loop starts; the writer never clears it) with
// heartbeat staleness, so a writer that stops pulsing reads as dead.
func (p *Plane) WriterAliveNow() bool {
	return p.WriterAlive.Load() && Alive(p.WriterHeartbeatNs.Load())
}

// IngestAliveNow is the ingester's equivalent of WriterAliveNow.
func (p *Plane) IngestAliveNow() bool {
	return p.IngestAlive.Load() && Alive(p.IngestHeartbeatNs.Load())
}

// SetWriterLastError records writer_last_error. A nil err clears it.
func (p *Plane) SetWriterLastError(err error) {
	setErrPointer(&p.WriterLastError, err)
}

// SetIngestLastError records ingest_last_error. A nil err clears it.
func (p *Plane) SetIngestLastError(err error) {
	setErrPointer(&p.IngestLastError, err)
}

func setErrPointer(field *atomic.Pointer[string], err error) {
	if err == nil {
		field.Store(nil)
		return
	}
	s := err.Error()
	field.Store(&s)
}
