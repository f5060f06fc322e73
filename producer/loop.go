package producer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/ring"
)

// Run drives src into r through codec until ctx is cancelled. The
// producer blocks on the sensor source only; there is no internal
// throttle here, Next()'s own blocking behavior sets the rate. Metrics
// are derived from wall-clock publish timing, not sample counts, so
// they track actual throughput even when Encode returns a batch of
// frames for one Next() call.
func Run(ctx context.Context, src Source, codec *frame.Codec, r *ring.Ring, plane *metrics.Plane, logger *zap.Logger) error {
	publishTimes := metrics.NewRolling(256)
	lastFPSTick := time.Now()
	framesSinceFPSTick := 0

	if plane != nil {
		plane.HeartbeatProducer(time.Now())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, dims, err := src.Next()
		if err != nil {
			if logger != nil {
				logger.Error("producer source failed", zap.Error(err))
			}
			return err
		}

		start := time.Now()
		frames, err := codec.Encode(data, dims)
		if err != nil {
			// A shape mismatch is fatal to the producer cycle: the
			// source and the ring disagree on layout, and retrying
			// won't change that.
			if logger != nil {
				logger.Error("producer codec rejected source frame", zap.Error(err))
			}
			return err
		}
		if err := r.PublishBatch(frames); err != nil {
			if logger != nil {
				logger.Error("producer publish failed", zap.Error(err))
			}
			return err
		}
		publishTimes.Add(float64(time.Since(start).Microseconds()) / 1000.0)
		framesSinceFPSTick += len(frames)

		now := time.Now()
		if elapsed := now.Sub(lastFPSTick); elapsed >= time.Second {
			if plane != nil {
				plane.SetProducerFPS(float64(framesSinceFPSTick) / elapsed.Seconds())
				plane.SetPublishAvgMs(publishTimes.Avg())
				plane.SetPublishP95Ms(publishTimes.P95())
				plane.LastWriteIdx.Store(r.WriteIndex())
			}
			lastFPSTick = now
			framesSinceFPSTick = 0
		}
		if plane != nil {
			plane.HeartbeatProducer(now)
		}
	}
}
