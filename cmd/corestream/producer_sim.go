package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/producer"
	"github.com/sensorplane/corestream/ring"
)

// runProducerSim attaches to a ring a "session" subcommand already
// created and publishes synthetic frames into it, standing in for the
// real sensor acquisition process.
func runProducerSim(args []string) error {
	fs := flag.NewFlagSet("producer-sim", flag.ContinueOnError)
	cfg, logger, err := loadConfigAndLogger(fs, args, "producer-sim")
	if err != nil {
		return err
	}
	defer logger.Sync()

	shp, err := cfg.Shape()
	if err != nil {
		return err
	}
	ringPath := filepath.Join(cfg.RingDir, cfg.RingName+".ring")
	r, err := ring.Open(ringPath, cfg.RingCapacity, shp.FrameBytes())
	if err != nil {
		return fmt.Errorf("attach to ring at %s (has the session subcommand been started?): %w", ringPath, err)
	}
	defer r.Close(false)

	codec := frame.New(shp)
	src, err := newSyntheticSource(shp)
	if err != nil {
		return err
	}
	defer src.Close()

	plane := metrics.New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signalCh()
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("producer-sim publishing", zap.String("ring", ringPath))
	err = producer.Run(ctx, src, codec, r, plane, logger)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func newSyntheticSource(shp frame.Shape) (producer.Source, error) {
	switch shp.Mode {
	case frame.Line:
		return producer.NewSyntheticLine(shp.N, shp.C), nil
	case frame.Image:
		return producer.NewSyntheticImage(shp.H, shp.W, shp.C), nil
	default:
		return nil, fmt.Errorf("producer-sim: unsupported shape mode")
	}
}
