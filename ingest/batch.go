package ingest

import (
	"encoding/binary"
	"math"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/sink"
)

// timeKey is the per-frame wall-clock sequence appended alongside the
// channel slices in line mode: one float64 of seconds per frame.
const timeKey = "time"

// accumulator collects decoded frames per sink key until batchFrames is
// reached, then flushes a single concatenated Batch per key: one list
// per channel slice plus the "time" sequence in line mode, one list
// under "image" in image mode.
type accumulator struct {
	shape       frame.Shape
	channelKeys []string
	batchFrames int

	count   int
	payload map[string][]byte
	indices map[string][]uint64
}

func newAccumulator(shp frame.Shape, channelKeys []string, batchFrames int) *accumulator {
	a := &accumulator{
		shape:       shp,
		channelKeys: channelKeys,
		batchFrames: batchFrames,
		payload:     make(map[string][]byte),
		indices:     make(map[string][]uint64),
	}
	for _, key := range a.keys() {
		a.payload[key] = nil
		a.indices[key] = nil
	}
	return a
}

// keys returns every sink key this accumulator appends under.
func (a *accumulator) keys() []string {
	if a.shape.Mode == frame.Image {
		return []string{"image"}
	}
	return append(append([]string(nil), a.channelKeys...), timeKey)
}

// Add folds one frame's payload into the accumulator, splitting into
// per-channel slices (plus a "time" entry) in line mode.
func (a *accumulator) Add(frameBytes []byte, tsNs int64, logicalIdx uint64) {
	if a.shape.Mode == frame.Image {
		a.payload["image"] = append(a.payload["image"], frameBytes...)
		a.indices["image"] = append(a.indices["image"], logicalIdx)
	} else {
		for i, key := range a.channelKeys {
			a.payload[key] = append(a.payload[key], frame.ExtractChannel(frameBytes, a.shape, i)...)
			a.indices[key] = append(a.indices[key], logicalIdx)
		}
		var ts [8]byte
		binary.LittleEndian.PutUint64(ts[:], math.Float64bits(float64(tsNs)/1e9))
		a.payload[timeKey] = append(a.payload[timeKey], ts[:]...)
		a.indices[timeKey] = append(a.indices[timeKey], logicalIdx)
	}
	a.count++
}

// Ready reports whether the accumulator has reached batchFrames and
// should be flushed.
func (a *accumulator) Ready() bool {
	return a.count >= a.batchFrames
}

// Empty reports whether there is nothing pending to flush.
func (a *accumulator) Empty() bool {
	return a.count == 0
}

// Flush appends every key's accumulated payload to sk as one Batch each,
// then resets the accumulator for the next run.
func (a *accumulator) Flush(sk sink.Sink) error {
	for _, key := range a.keys() {
		if len(a.payload[key]) == 0 {
			continue
		}
		batch := sink.Batch{
			Channel:        key,
			LogicalIndices: a.indices[key],
			Payload:        a.payload[key],
		}
		if err := sk.AppendBatch(batch); err != nil {
			return err
		}
		a.payload[key] = nil
		a.indices[key] = nil
	}
	a.count = 0
	return nil
}
