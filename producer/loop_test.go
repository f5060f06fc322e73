package producer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/producer"
	"github.com/sensorplane/corestream/ring"
)

var errStop = errors.New("test source exhausted")

// boundedSource wraps another Source and fails after count frames, so
// producer.Run terminates deterministically instead of needing a
// wall-clock race against context cancellation.
type boundedSource struct {
	inner producer.Source
	count int
}

func (b *boundedSource) Next() ([]float32, []int, error) {
	if b.count <= 0 {
		return nil, nil, errStop
	}
	b.count--
	return b.inner.Next()
}

func (b *boundedSource) Close() error { return b.inner.Close() }

func TestRunPublishesExactlyNFrames(t *testing.T) {
	shp := frame.LineShape(4, 3, frame.Float32)
	path := filepath.Join(t.TempDir(), "ring.bin")
	r, err := ring.Create(path, 256, shp.FrameBytes()) // 256*48=12288 bytes, page aligned
	if err != nil {
		t.Fatalf("ring.Create: %v", err)
	}
	defer r.Close(true)

	codec := frame.New(shp)
	src := &boundedSource{inner: producer.NewSyntheticLine(4, 3), count: 10}
	plane := metrics.New()

	err = producer.Run(context.Background(), src, codec, r, plane, nil)
	if !errors.Is(err, errStop) {
		t.Fatalf("Run returned %v, want errStop", err)
	}
	if got := r.WriteIndex(); got != 10 {
		t.Fatalf("write_idx = %d, want 10", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	shp := frame.LineShape(4, 3, frame.Float32)
	path := filepath.Join(t.TempDir(), "ring.bin")
	r, err := ring.Create(path, 256, shp.FrameBytes())
	if err != nil {
		t.Fatalf("ring.Create: %v", err)
	}
	defer r.Close(true)

	codec := frame.New(shp)
	src := &boundedSource{inner: producer.NewSyntheticLine(4, 3), count: 1_000_000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.Run(ctx, src, codec, r, metrics.New(), nil); err != nil {
		t.Fatalf("Run after immediate cancel returned %v, want nil", err)
	}
}
