package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/ingest"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/sink"
)

// runIngester runs only the ingester against an existing pair of
// journal files and a durable sink, independent of any ring or writer
// process (the seal-file convention is the only coupling between them).
func runIngester(args []string) error {
	fs := flag.NewFlagSet("ingester", flag.ContinueOnError)
	cfg, logger, err := loadConfigAndLogger(fs, args, "ingester")
	if err != nil {
		return err
	}
	defer logger.Sync()

	shp, err := cfg.Shape()
	if err != nil {
		return err
	}

	var sk sink.Sink
	switch cfg.SinkKind {
	case "badger":
		sk, err = sink.OpenBadger(cfg.SinkPath)
	default:
		sk = sink.NewMemory()
	}
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer sk.Close()

	plane := metrics.New()
	ing, err := ingest.New(cfg.JournalPathA, cfg.JournalPathB, shp, cfg.ChannelKeys, cfg.BatchFrames, sk, plane, logger)
	if err != nil {
		return fmt.Errorf("new ingester: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signalCh()
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("ingester watching journal files", zap.String("a", cfg.JournalPathA), zap.String("b", cfg.JournalPathB))
	return ing.Run(ctx, cfg.IngestHz)
}
