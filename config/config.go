// Package config holds the enumerated, validated-at-construction
// configuration record every actor is built from. Unknown keys are
// errors, not warnings.
package config

import (
	"fmt"

	"github.com/sensorplane/corestream/frame"
)

// Config is the full set of knobs a session needs: ring sizing and
// location, frame shape, journal rotation policy, ingester batching, and
// logging level.
type Config struct {
	// Ring
	RingName     string `mapstructure:"ring_name"`
	RingDir      string `mapstructure:"ring_dir"`
	RingCapacity uint64 `mapstructure:"ring_capacity"`

	// Frame shape
	DataMode string `mapstructure:"data_mode"` // "line" or "image"
	DType    string `mapstructure:"dtype"`

	// line mode
	LineN       int      `mapstructure:"line_n"`
	LineC       int      `mapstructure:"line_c"`
	ChannelKeys []string `mapstructure:"channel_keys"` // sink key per channel; defaults to ch0..chC-1

	// image mode
	ImageH int `mapstructure:"image_h"`
	ImageW int `mapstructure:"image_w"`
	ImageC int `mapstructure:"image_c"`

	// Journal
	JournalPathA  string  `mapstructure:"journal_path_a"`
	JournalPathB  string  `mapstructure:"journal_path_b"`
	PollHz        float64 `mapstructure:"poll_hz"`
	RotateFrames  uint64  `mapstructure:"rotate_frames"`
	RotateSeconds float64 `mapstructure:"rotate_seconds"`
	Overwrite     bool    `mapstructure:"overwrite"` // wipe existing journal files at startup

	// Ingester
	IngestEnabled  bool    `mapstructure:"ingest_enabled"`
	IngestHz       float64 `mapstructure:"ingest_hz"`
	BatchFrames    int     `mapstructure:"batch_frames"`
	ConsumerLag    uint64  `mapstructure:"consumer_lag"`

	// Durable sink
	SinkKind string `mapstructure:"sink_kind"` // "badger" or "memory"
	SinkPath string `mapstructure:"sink_path"`

	// Ambient
	LogLevel string `mapstructure:"log_level"`
}

// Default returns a Config for a plain line-mode session: 4096-frame
// ring, rotate_frames=8192, rotate_seconds=5.0, batch_frames=32.
func Default() Config {
	return Config{
		RingName:      "sensor_ring",
		RingDir:       "/dev/shm/corestream",
		RingCapacity:  4096,
		DataMode:      "line",
		DType:         "float32",
		LineN:         1000,
		LineC:         3,
		JournalPathA:  "./serial_stream_a.bin",
		JournalPathB:  "./serial_stream_b.bin",
		PollHz:        400.0,
		RotateFrames:  8192,
		RotateSeconds: 5.0,
		IngestEnabled: false,
		IngestHz:      5.0,
		BatchFrames:   32,
		ConsumerLag:   16, // matches ring.DefaultLag
		SinkKind:      "memory",
		SinkPath:      "./serial_db",
		LogLevel:      "info",
	}
}

// Shape builds the frame.Shape this config describes, resolving DataMode
// and DType into the frame package's typed descriptors.
func (c Config) Shape() (frame.Shape, error) {
	dtype, err := frame.ParseDType(c.DType)
	if err != nil {
		return frame.Shape{}, err
	}
	switch c.DataMode {
	case "line":
		return frame.LineShape(c.LineN, c.LineC, dtype), nil
	case "image":
		return frame.ImageShape(c.ImageH, c.ImageW, c.ImageC, dtype), nil
	default:
		return frame.Shape{}, fmt.Errorf("config: unknown data_mode %q", c.DataMode)
	}
}

// Validate checks cross-field invariants that a flat decode can't catch:
// shape fields are positive for the selected mode, ConsumerLag leaves
// room in the ring, and image mode always runs with ingestion enabled.
func (c *Config) Validate() error {
	if c.RingCapacity == 0 {
		return fmt.Errorf("config: ring_capacity must be > 0")
	}
	if _, err := c.Shape(); err != nil {
		return err
	}
	switch c.DataMode {
	case "line":
		if c.LineN <= 0 || c.LineC <= 0 {
			return fmt.Errorf("config: line mode requires line_n > 0 and line_c > 0")
		}
		if len(c.ChannelKeys) == 0 {
			c.ChannelKeys = make([]string, c.LineC)
			for i := range c.ChannelKeys {
				c.ChannelKeys[i] = fmt.Sprintf("ch%d", i)
			}
		} else if len(c.ChannelKeys) != c.LineC {
			return fmt.Errorf("config: channel_keys has %d entries, line_c is %d", len(c.ChannelKeys), c.LineC)
		}
	case "image":
		if c.ImageH <= 0 || c.ImageW <= 0 || c.ImageC <= 0 {
			return fmt.Errorf("config: image mode requires image_h, image_w, image_c > 0")
		}
		// A pixel ring is useless to archive without a downstream sink,
		// so image mode always runs with ingestion on.
		c.IngestEnabled = true
	}
	if c.ConsumerLag >= c.RingCapacity {
		return fmt.Errorf("config: consumer_lag (%d) must be less than ring_capacity (%d)", c.ConsumerLag, c.RingCapacity)
	}
	if c.RotateFrames == 0 && c.RotateSeconds <= 0 {
		return fmt.Errorf("config: at least one of rotate_frames or rotate_seconds must be set")
	}
	if c.PollHz <= 0 {
		return fmt.Errorf("config: poll_hz must be > 0")
	}
	if c.IngestEnabled && c.IngestHz <= 0 {
		return fmt.Errorf("config: ingest_hz must be > 0")
	}
	if c.BatchFrames <= 0 {
		return fmt.Errorf("config: batch_frames must be > 0")
	}
	switch c.SinkKind {
	case "badger", "memory":
	default:
		return fmt.Errorf("config: unknown sink_kind %q", c.SinkKind)
	}
	return nil
}
