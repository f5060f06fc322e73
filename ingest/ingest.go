// Package ingest implements the background ingester: it watches the two
// journal paths for seal files, drains any sealed file record-by-record
// into the durable sink in batches, then truncates the file back to its
// header and removes the seal to hand it back to the writer.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/sink"
)

// backoff is the pause after a failed pass. I/O errors during the loop
// are caught, surfaced through the metrics plane, and retried.
const backoff = 200 * time.Millisecond

// Ingester drains both journal files into sink.Sink whenever it finds
// them sealed, at a much lower polling rate than the journal writer.
type Ingester struct {
	paths       [2]string
	shape       frame.Shape
	channelKeys []string // line mode only; nil/unused for image mode
	batchFrames int

	sink   sink.Sink
	watch  *watcher
	plane  *metrics.Plane
	logger *zap.Logger
}

// New returns a ready-to-run Ingester. channelKeys is only consulted in
// line mode and must have len == shape.C; it is ignored for image mode,
// which appends whole frames under the single key "image".
func New(pathA, pathB string, shp frame.Shape, channelKeys []string, batchFrames int, sk sink.Sink, plane *metrics.Plane, logger *zap.Logger) (*Ingester, error) {
	w, err := newWatcher(pathA, pathB, logger)
	if err != nil {
		return nil, err
	}
	ing := &Ingester{
		paths:       [2]string{pathA, pathB},
		shape:       shp,
		channelKeys: channelKeys,
		batchFrames: batchFrames,
		sink:        sk,
		watch:       w,
		plane:       plane,
		logger:      logger,
	}
	if shp.Mode == frame.Line {
		for _, key := range channelKeys {
			_ = sk.EnsureKey(key)
		}
		_ = sk.EnsureKey(timeKey)
	} else {
		_ = sk.EnsureKey("image")
		dims, _ := json.Marshal([]int{shp.H, shp.W, shp.C})
		if err := sk.SetSidecar("image_shape", dims); err != nil {
			w.Close()
			return nil, fmt.Errorf("ingest: record image_shape sidecar: %w", err)
		}
	}
	return ing, nil
}

// Run polls both journal paths on a fixed interval until ctx is
// cancelled, draining whichever are sealed. The fsnotify watch set up in
// New is a fast-path wake only; the poll loop is the source of truth, so
// a missed event is always covered by the next tick.
func (ing *Ingester) Run(ctx context.Context, pollHz float64) error {
	period := time.Duration(float64(time.Second) / pollHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	defer ing.watch.Close()

	if ing.plane != nil {
		ing.plane.IngestAlive.Store(true)
	}

	for {
		select {
		case <-ctx.Done():
			ing.drainSealedPass()
			return nil
		case <-ing.watch.events():
			ing.drainSealedPass()
		case <-ticker.C:
			ing.drainSealedPass()
		}
	}
}

// drainSealedPass scans both paths once, draining any that are sealed,
// and updates liveness/heartbeat metrics for the pass as a whole.
func (ing *Ingester) drainSealedPass() {
	for _, path := range ing.paths {
		if err := ing.drainIfSealed(path); err != nil {
			if ing.plane != nil {
				ing.plane.SetIngestLastError(err)
			}
			if ing.logger != nil {
				ing.logger.Warn("ingest drain failed", zap.String("path", path), zap.Error(err))
			}
			time.Sleep(backoff)
			continue
		}
		if ing.plane != nil {
			ing.plane.SetIngestLastError(nil)
		}
	}
	if ing.plane != nil {
		ing.plane.HeartbeatIngest(time.Now())
	}
}
