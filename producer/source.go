// Package producer defines the sensor acquisition side of the pipeline.
// Real acquisition hardware lives outside this module; this package is
// the interface it implements plus one deterministic synthetic
// implementation usable for tests and the `producer-sim` CLI subcommand.
package producer

// Source is the sensor acquisition interface: anything that emits
// (samples, channels) or (H, W, C) blocks. Next blocks until a frame is
// ready and returns it as a flattened row-major array alongside the
// dims frame.Codec.Encode expects for the configured mode.
type Source interface {
	// Next blocks on the sensor and returns exactly one frame's worth of
	// flattened float32 samples plus their logical dims.
	Next() (data []float32, dims []int, err error)

	// Close releases any resources the source holds (serial port, file
	// handle, device context).
	Close() error
}
