package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/journal"
)

// drainIfSealed drains one journal path: if path has no seal, the
// writer still owns it and this is a no-op. Otherwise read every
// record, batch-flush to the sink, then truncate back to header and
// remove the seal.
func (ing *Ingester) drainIfSealed(path string) error {
	if !journal.HasSeal(path) {
		return nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	meta, headerLen, err := journal.DecodeHeader(f)
	if err != nil {
		// A malformed header on a sealed file skips that file and
		// records ingest_last_error; it does not block the other path.
		// The file stays sealed, so every later pass tries it again.
		if ing.logger != nil {
			ing.logger.Warn("ingest: skipping sealed file with bad header", zap.String("path", path), zap.Error(err))
		}
		return fmt.Errorf("ingest: %s: %w", path, err)
	}

	payloadLen := int(ing.shape.FrameBytes())
	acc := newAccumulator(ing.shape, ing.channelKeys, ing.batchFrames)
	var total, bytesRead uint64

	for {
		tsNs, logicalIdx, payload, err := journal.ReadRecord(f, payloadLen)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break // clean EOF or truncated tail
			}
			return fmt.Errorf("ingest: read record from %s: %w", path, err)
		}
		acc.Add(payload, tsNs, logicalIdx)
		total++
		bytesRead += uint64(len(payload))
		if acc.Ready() {
			if err := acc.Flush(ing.sink); err != nil {
				return fmt.Errorf("ingest: flush batch for %s: %w", path, err)
			}
			if ing.plane != nil {
				ing.plane.IngestBatchesFlushed.Add(1)
			}
		}
	}
	if !acc.Empty() {
		if err := acc.Flush(ing.sink); err != nil {
			return fmt.Errorf("ingest: flush final batch for %s: %w", path, err)
		}
		if ing.plane != nil {
			ing.plane.IngestBatchesFlushed.Add(1)
		}
	}

	if total == 0 {
		// Nothing to drain yet (file sealed right at rotation, before
		// any records landed); leave it sealed for the next pass so we
		// don't churn a truncate+rewrite for no reason. The writer never
		// writes to a sealed file, so this is safe to revisit.
		return nil
	}

	if err := truncateToHeader(f, meta, headerLen); err != nil {
		return fmt.Errorf("ingest: truncate %s: %w", path, err)
	}
	if err := journal.RemoveSeal(path); err != nil {
		return fmt.Errorf("ingest: remove seal for %s: %w", path, err)
	}

	if ing.plane != nil {
		ing.plane.IngestFramesIngested.Add(total)
		ing.plane.IngestBytesRead.Add(bytesRead)
	}
	return nil
}

// truncateToHeader restores the file to the empty-with-header state the
// writer expects after a successful drain: truncate, then re-write
// exactly magic || version || metadata_len || metadata, preserved from
// the just-read header.
func truncateToHeader(f *os.File, meta journal.Metadata, headerLen int) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := journal.EncodeHeader(f, meta); err != nil {
		return err
	}
	newLen, err := journal.HeaderLen(meta)
	if err != nil {
		return err
	}
	if newLen != headerLen {
		// Metadata is byte-identical across a drain (same meta struct
		// was just decoded from this file), so this would indicate a
		// JSON-encoding instability rather than a real race.
		return fmt.Errorf("ingest: re-encoded header length %d != original %d", newLen, headerLen)
	}
	return f.Sync()
}
