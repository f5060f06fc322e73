// Package logging builds the one *zap.Logger shared by every actor
// (producer, journal writer, ingester, session), so log lines from all
// of them share the same encoder and level regardless of which
// cmd/corestream subcommand is running.
package logging

import (
	"os"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logfmt-encoded logger writing to stderr at level, tagged
// with a "component" field so multiplexed actor output stays
// attributable (the CLI's "session" subcommand runs all three actors
// in one process).
func New(level zapcore.Level, component string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zaplogfmt.NewEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core).With(zap.String("component", component))
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to
// a zapcore.Level, defaulting to Info on an empty string.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.Set(s); err != nil {
		return zapcore.InfoLevel, err
	}
	return lvl, nil
}
