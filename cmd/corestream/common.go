package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/config"
	"github.com/sensorplane/corestream/internal/logging"
)

// loadConfigAndLogger parses the shared "-config" flag out of a
// subcommand's own flag set, loads the resulting config.Config, and
// builds a logger tagged with component.
func loadConfigAndLogger(fs *flag.FlagSet, args []string, component string) (config.Config, *zap.Logger, error) {
	configPath := fs.String("config", "", "path to a corestream config file (yaml/json/toml)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(level, component), nil
}
