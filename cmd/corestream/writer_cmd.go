package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/journal"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/ring"
)

// runWriter runs only the ring + journal writer, for a deployment that
// splits the writer into its own OS process from the ingester (the
// seal-file handoff in journal/ is exactly what makes that split safe).
func runWriter(args []string) error {
	fs := flag.NewFlagSet("writer", flag.ContinueOnError)
	cfg, logger, err := loadConfigAndLogger(fs, args, "writer")
	if err != nil {
		return err
	}
	defer logger.Sync()

	shp, err := cfg.Shape()
	if err != nil {
		return err
	}
	ringPath := filepath.Join(cfg.RingDir, cfg.RingName+".ring")
	r, err := ring.Create(ringPath, cfg.RingCapacity, shp.FrameBytes())
	if err != nil {
		return fmt.Errorf("create ring: %w", err)
	}
	defer r.Close(true)

	meta := journal.Metadata{RingName: cfg.RingName, Shape: shapeDims(shp), DType: cfg.DType, DataMode: cfg.DataMode}
	plane := metrics.New()
	w, err := journal.NewWriter(cfg.JournalPathA, cfg.JournalPathB, r, meta,
		cfg.RotateFrames, cfg.RotateSeconds, cfg.PollHz, cfg.ConsumerLag, cfg.Overwrite, plane, logger)
	if err != nil {
		return fmt.Errorf("new writer: %w", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signalCh()
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("writer draining ring to journal", zap.String("ring", ringPath))
	return w.Run(ctx)
}

func shapeDims(shp frame.Shape) []int {
	if shp.Mode == frame.Image {
		return []int{shp.H, shp.W, shp.C}
	}
	return []int{shp.N, shp.C}
}
