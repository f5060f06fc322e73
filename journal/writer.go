package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/ring"
)

// fileState tracks one of the two alternating journal files.
type fileState struct {
	path       string
	file       *os.File
	headerLen  int
	frameCount uint64
}

// Writer owns the two journal files, drains the Ring into whichever is
// active, and rotates between them on frame count, wall-clock elapsed,
// or an explicit control flag.
type Writer struct {
	ring       *ring.Ring
	meta       Metadata
	frameBytes uint64
	recordLen  int

	files  [2]fileState
	active int

	rotateFrames  uint64
	rotateSeconds float64
	lastRotate    time.Time
	force         atomic.Bool

	lag        uint64
	lastIdx    uint64
	pollPeriod time.Duration

	plane  *metrics.Plane
	logger *zap.Logger
}

// NewWriter opens (or creates) both journal files, determines which is
// active from seal presence, and returns a ready-to-run Writer. r is the
// Ring to drain; lag mirrors the consumer lag budget so the writer never
// tries to read slots the producer may be overwriting mid-catch-up.
// With overwrite set, both files are wiped back to a fresh header and
// any seals removed, discarding whatever a previous run left behind.
func NewWriter(pathA, pathB string, r *ring.Ring, meta Metadata, rotateFrames uint64, rotateSeconds float64, pollHz float64, lag uint64, overwrite bool, plane *metrics.Plane, logger *zap.Logger) (*Writer, error) {
	recordLen := recordHeaderLen + int(r.FrameBytes())

	w := &Writer{
		ring:          r,
		meta:          meta,
		frameBytes:    r.FrameBytes(),
		recordLen:     recordLen,
		rotateFrames:  rotateFrames,
		rotateSeconds: rotateSeconds,
		lag:           lag,
		pollPeriod:    time.Duration(float64(time.Second) / pollHz),
		plane:         plane,
		logger:        logger,
		lastRotate:    time.Now(),
	}

	for i, p := range [2]string{pathA, pathB} {
		if overwrite {
			if err := RemoveSeal(p); err != nil {
				w.closeAll()
				return nil, err
			}
		}
		fs, err := attachFile(p, meta, recordLen, overwrite)
		if err != nil {
			w.closeAll()
			return nil, err
		}
		w.files[i] = fs
	}

	// If a seal exists for file A the ingester still owns it, so the
	// writer resumes on file B; otherwise A is active.
	if HasSeal(pathA) {
		w.active = 1
	} else {
		w.active = 0
	}
	if err := RemoveSeal(w.files[w.active].path); err != nil {
		w.closeAll()
		return nil, err
	}

	return w, nil
}

// attachFile ensures path's parent directory exists, writes a fresh
// header if the file is missing, zero-length, or being overwritten, and
// otherwise opens the existing file for append, computing its current
// frame count from size.
func attachFile(path string, meta Metadata, recordLen int, overwrite bool) (fileState, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fileState{}, fmt.Errorf("journal: mkdir: %w", err)
	}

	st, err := os.Stat(path)
	needsHeader := overwrite || err != nil || st.Size() == 0

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fileState{}, fmt.Errorf("journal: open %s: %w", path, err)
	}

	if needsHeader {
		if err := f.Truncate(0); err != nil {
			f.Close()
			return fileState{}, err
		}
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return fileState{}, err
		}
		if err := EncodeHeader(f, meta); err != nil {
			f.Close()
			return fileState{}, err
		}
		headerLen, _ := HeaderLen(meta)
		return fileState{path: path, file: f, headerLen: headerLen, frameCount: 0}, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return fileState{}, err
	}
	_, headerLen, err := DecodeHeader(f)
	if err != nil {
		f.Close()
		return fileState{}, fmt.Errorf("journal: %s has a corrupt header: %w", path, err)
	}
	remaining := st.Size() - int64(headerLen)
	var frameCount uint64
	if remaining > 0 {
		frameCount = uint64(remaining) / uint64(recordLen)
	}
	if _, err := f.Seek(0, 2); err != nil {
		f.Close()
		return fileState{}, err
	}
	return fileState{path: path, file: f, headerLen: headerLen, frameCount: frameCount}, nil
}

// ForceRotate sets the control flag the dump loop checks each tick, so
// an operator can seal the active file without waiting out the frame or
// time triggers.
func (w *Writer) ForceRotate() {
	w.force.Store(true)
}

func (w *Writer) closeAll() {
	for _, fs := range w.files {
		if fs.file != nil {
			fs.file.Close()
		}
	}
}

// Close flushes and closes both journal files.
func (w *Writer) Close() error {
	var outErr error
	for _, fs := range w.files {
		if fs.file == nil {
			continue
		}
		if err := fs.file.Sync(); err != nil && outErr == nil {
			outErr = err
		}
		if err := fs.file.Close(); err != nil && outErr == nil {
			outErr = err
		}
	}
	return outErr
}
