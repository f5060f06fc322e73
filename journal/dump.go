package journal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// writerBackoff is the short pause after a failed tick: I/O errors
// during the writer loop are caught, logged to metrics, then retried
// after this backoff rather than propagated.
const writerBackoff = 20 * time.Millisecond

// Run drains the Ring into the active journal file on a fixed poll
// interval until ctx is cancelled. On cancellation it flushes and seals
// the active file, returning nil unless that fails.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollPeriod)
	defer ticker.Stop()

	if w.plane != nil {
		w.plane.WriterAlive.Store(true)
	}

	for {
		select {
		case <-ctx.Done():
			active := &w.files[w.active]
			if err := active.file.Sync(); err != nil {
				return err
			}
			return CreateSeal(active.path)
		case now := <-ticker.C:
			if err := w.tick(now); err != nil {
				if w.plane != nil {
					w.plane.SetWriterLastError(err)
				}
				if w.logger != nil {
					w.logger.Warn("journal writer tick failed", zap.Error(err))
				}
				time.Sleep(writerBackoff)
				continue
			}
			if w.plane != nil {
				w.plane.HeartbeatWriter(time.Now())
				w.plane.SetWriterLastError(nil)
			}
		}
	}
}

// tick performs one pass of the dump loop: observe write_idx, drain any
// new frames (capped by the ring's safe lag margin, counting anything
// beyond that as loss), and rotate whenever a trigger fires, never
// splitting a record across files.
func (w *Writer) tick(now time.Time) error {
	if w.shouldRotate(now) {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	wi := w.ring.WriteIndex()
	if wi == w.lastIdx {
		return nil
	}

	n := wi - w.lastIdx
	capacity := w.ring.Capacity()
	maxDrain := capacity
	if w.lag < capacity {
		maxDrain = capacity - w.lag
	}
	var lost uint64
	if n > maxDrain {
		lost = n - maxDrain
		n = maxDrain
	}
	start := wi - n

	view, err := w.ring.ViewWindow(start, n)
	if err != nil {
		return err
	}

	active := &w.files[w.active]
	for i := uint64(0); i < n; i++ {
		if w.shouldRotate(time.Now()) {
			if err := w.rotate(); err != nil {
				return err
			}
			active = &w.files[w.active]
		}
		payload := view[i*w.frameBytes : (i+1)*w.frameBytes]
		if err := WriteRecord(active.file, now.UnixNano(), start+i, payload); err != nil {
			return err
		}
		active.frameCount++
		if w.plane != nil {
			w.plane.WriterTotalFrames.Add(1)
		}
	}

	w.lastIdx = wi
	if w.plane != nil {
		w.plane.LastWriteIdx.Store(wi)
		if lost > 0 {
			w.plane.DropsEst.Add(lost)
		}
	}
	return nil
}
