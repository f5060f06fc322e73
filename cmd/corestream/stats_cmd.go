package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sensorplane/corestream/ring"
)

// runStats attaches read-only(ish) to a running session's ring and
// prints write_idx once a second, the minimal cross-process observable
// available without an HTTP metrics scrape (the richer snapshot lives
// inside one process's metrics.Plane, which a separate stats process
// has no access to).
func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cfg, _, err := loadConfigAndLogger(fs, args, "stats")
	if err != nil {
		return err
	}

	shp, err := cfg.Shape()
	if err != nil {
		return err
	}
	ringPath := filepath.Join(cfg.RingDir, cfg.RingName+".ring")
	r, err := ring.Open(ringPath, cfg.RingCapacity, shp.FrameBytes())
	if err != nil {
		return fmt.Errorf("attach to ring at %s: %w", ringPath, err)
	}
	defer r.Close(false)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	sig := signalCh()
	for {
		select {
		case <-sig:
			return nil
		case <-ticker.C:
			fmt.Printf("write_idx=%d capacity=%d\n", r.WriteIndex(), r.Capacity())
		}
	}
}
