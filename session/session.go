// Package session is the composition root: a Session owns a ring, a
// journal writer, an ingester, and a metrics handle, wired together
// from one validated config with a single graceful-shutdown path.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sensorplane/corestream/config"
	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/ingest"
	"github.com/sensorplane/corestream/journal"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/ring"
	"github.com/sensorplane/corestream/sink"
)

// Session owns every actor in one running pipeline: the ring, the
// journal writer, and (if enabled) the ingester.
type Session struct {
	ID     string
	cfg    config.Config
	logger *zap.Logger
	plane  *metrics.Plane

	ring   *ring.Ring
	writer *journal.Writer
	ing    *ingest.Ingester
	sk     sink.Sink

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New validates cfg, creates the ring, opens the journal writer, and
// (when enabled) constructs the ingester and its sink, but does not yet
// start any goroutines; call Run for that.
func New(cfg config.Config, logger *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shp, err := cfg.Shape()
	if err != nil {
		return nil, err
	}

	plane := metrics.New()
	ringPath := filepath.Join(cfg.RingDir, cfg.RingName+".ring")
	r, err := ring.Create(ringPath, cfg.RingCapacity, shp.FrameBytes())
	if err != nil {
		return nil, fmt.Errorf("session: create ring: %w", err)
	}

	meta := journal.Metadata{
		RingName: cfg.RingName,
		Shape:    shapeDims(shp),
		DType:    cfg.DType,
		DataMode: cfg.DataMode,
	}
	w, err := journal.NewWriter(cfg.JournalPathA, cfg.JournalPathB, r, meta,
		cfg.RotateFrames, cfg.RotateSeconds, cfg.PollHz, cfg.ConsumerLag, cfg.Overwrite, plane, logger)
	if err != nil {
		r.Close(true)
		return nil, fmt.Errorf("session: new writer: %w", err)
	}

	s := &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		logger: logger,
		plane:  plane,
		ring:   r,
		writer: w,
	}

	if cfg.IngestEnabled {
		sk, err := openSink(cfg)
		if err != nil {
			w.Close()
			r.Close(true)
			return nil, err
		}
		ing, err := ingest.New(cfg.JournalPathA, cfg.JournalPathB, shp, cfg.ChannelKeys, cfg.BatchFrames, sk, plane, logger)
		if err != nil {
			sk.Close()
			w.Close()
			r.Close(true)
			return nil, fmt.Errorf("session: new ingester: %w", err)
		}
		s.sk = sk
		s.ing = ing
	}

	return s, nil
}

func shapeDims(shp frame.Shape) []int {
	if shp.Mode == frame.Image {
		return []int{shp.H, shp.W, shp.C}
	}
	return []int{shp.N, shp.C}
}

func openSink(cfg config.Config) (sink.Sink, error) {
	switch cfg.SinkKind {
	case "badger":
		return sink.OpenBadger(cfg.SinkPath)
	default:
		return sink.NewMemory(), nil
	}
}

// Plane exposes the session's metrics handle, e.g. for wiring an HTTP
// scrape endpoint via metrics.NewCollector.
func (s *Session) Plane() *metrics.Plane { return s.plane }

// Ring exposes the underlying ring, e.g. for a producer or consumer to
// attach to directly.
func (s *Session) Ring() *ring.Ring { return s.ring }

// ForceRotate flips the journal writer's force_rotate control flag, so
// a caller can seal the active journal on demand.
func (s *Session) ForceRotate() {
	s.writer.ForceRotate()
}

// Snapshot is a combined status view across every actor the session
// owns.
type Snapshot struct {
	SessionID     string
	WriterAlive   bool
	IngestAlive   bool
	IngestEnabled bool
	LastWriteIdx  uint64
	DropsEst      uint64
}

// Snapshot returns a point-in-time combined view of every actor's
// liveness and the hot counters most useful for a status page.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:     s.ID,
		WriterAlive:   s.plane.WriterAliveNow(),
		IngestAlive:   s.cfg.IngestEnabled && s.plane.IngestAliveNow(),
		IngestEnabled: s.cfg.IngestEnabled,
		LastWriteIdx:  s.plane.LastWriteIdx.Load(),
		DropsEst:      s.plane.DropsEst.Load(),
	}
}

// watchdogInterval is how often the ingester watchdog checks the
// heartbeat.
const watchdogInterval = time.Second
