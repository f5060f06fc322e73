package journal

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// shouldRotate reports whether any of the three rotation triggers has
// fired: the active file has written rotate_frames records, wall-clock
// since the last rotation has reached rotate_seconds, or a shared
// force_rotate control flag is set.
func (w *Writer) shouldRotate(now time.Time) bool {
	active := &w.files[w.active]
	if w.rotateFrames > 0 && active.frameCount >= w.rotateFrames {
		return true
	}
	if w.rotateSeconds > 0 && now.Sub(w.lastRotate).Seconds() >= w.rotateSeconds {
		return true
	}
	return w.force.Load()
}

// rotate flushes and seals the active file, switches to the other file,
// and resets it to the empty-with-header state. Record order is
// preserved because every record up to this point is already durably in
// the file being sealed, and nothing is written to the new active file
// until this function returns.
func (w *Writer) rotate() error {
	outgoing := &w.files[w.active]
	if err := outgoing.file.Sync(); err != nil {
		return fmt.Errorf("journal: fsync %s: %w", outgoing.path, err)
	}
	if err := CreateSeal(outgoing.path); err != nil {
		return err
	}

	w.active = 1 - w.active
	incoming := &w.files[w.active]

	if err := RemoveSeal(incoming.path); err != nil {
		return err
	}
	if err := incoming.file.Truncate(0); err != nil {
		return err
	}
	if _, err := incoming.file.Seek(0, 0); err != nil {
		return err
	}
	if err := EncodeHeader(incoming.file, w.meta); err != nil {
		return err
	}
	headerLen, _ := HeaderLen(w.meta)
	incoming.headerLen = headerLen
	incoming.frameCount = 0

	w.force.Store(false)
	w.lastRotate = time.Now()
	if w.plane != nil {
		w.plane.WriterRotations.Add(1)
		w.plane.WriterActiveBin.Store(uint64(w.active))
	}
	if w.logger != nil {
		w.logger.Info("journal rotated", zap.String("sealed", outgoing.path), zap.String("active", incoming.path))
	}
	return nil
}
