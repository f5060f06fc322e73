package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a Config from configPath (if non-empty) with environment
// variable overrides layered on top: AutomaticEnv plus a "-"/"."-to-"_"
// key replacer so CORESTREAM_RING_CAPACITY overrides ring_capacity.
//
// Unknown keys in the config file are a hard error: UnmarshalExact
// enforces that every key in the file maps to a Config field.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("corestream")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults(v, Default())

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	out := Default()
	if err := v.UnmarshalExact(&out); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	out.RingDir = os.Expand(out.RingDir, os.Getenv)
	out.JournalPathA = os.Expand(out.JournalPathA, os.Getenv)
	out.JournalPathB = os.Expand(out.JournalPathB, os.Getenv)
	out.SinkPath = os.Expand(out.SinkPath, os.Getenv)

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// setDefaults seeds viper's own default layer from a Config value so
// fields absent from both the file and the environment still resolve to
// Default()'s values rather than zero values.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("ring_name", cfg.RingName)
	v.SetDefault("ring_dir", cfg.RingDir)
	v.SetDefault("ring_capacity", cfg.RingCapacity)
	v.SetDefault("data_mode", cfg.DataMode)
	v.SetDefault("dtype", cfg.DType)
	v.SetDefault("line_n", cfg.LineN)
	v.SetDefault("line_c", cfg.LineC)
	v.SetDefault("image_h", cfg.ImageH)
	v.SetDefault("image_w", cfg.ImageW)
	v.SetDefault("image_c", cfg.ImageC)
	v.SetDefault("journal_path_a", cfg.JournalPathA)
	v.SetDefault("journal_path_b", cfg.JournalPathB)
	v.SetDefault("poll_hz", cfg.PollHz)
	v.SetDefault("rotate_frames", cfg.RotateFrames)
	v.SetDefault("rotate_seconds", cfg.RotateSeconds)
	v.SetDefault("overwrite", cfg.Overwrite)
	v.SetDefault("ingest_enabled", cfg.IngestEnabled)
	v.SetDefault("ingest_hz", cfg.IngestHz)
	v.SetDefault("batch_frames", cfg.BatchFrames)
	v.SetDefault("consumer_lag", cfg.ConsumerLag)
	v.SetDefault("sink_kind", cfg.SinkKind)
	v.SetDefault("sink_path", cfg.SinkPath)
	v.SetDefault("log_level", cfg.LogLevel)
}
