package ingest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/journal"
	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/sink"
)

func testShape() frame.Shape {
	return frame.LineShape(4, 3, frame.Float32)
}

// writeSealedJournal writes a journal file with count records of
// frameBytes each (byte k repeated), seals it, and returns the
// path.
func writeSealedJournal(t *testing.T, dir string, count int, frameBytes int) string {
	t.Helper()
	path := filepath.Join(dir, "stream_a.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	meta := journal.Metadata{RingName: "test", Shape: []int{4, 3}, DType: "float32", DataMode: "line"}
	if err := journal.EncodeHeader(f, meta); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	for k := 0; k < count; k++ {
		payload := make([]byte, frameBytes)
		for i := range payload {
			payload[i] = byte(k)
		}
		if err := journal.WriteRecord(f, int64(k), uint64(k), payload); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := journal.CreateSeal(path); err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	return path
}

func newTestIngester(t *testing.T, mem *sink.Memory, batchFrames int) *Ingester {
	t.Helper()
	dir := t.TempDir()
	shp := testShape()
	ing := &Ingester{
		paths:       [2]string{filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")},
		shape:       shp,
		channelKeys: []string{"c0", "c1", "c2"},
		batchFrames: batchFrames,
		sink:        mem,
		plane:       metrics.New(),
	}
	return ing
}

func TestDrainIfSealedNotSealedIsNoop(t *testing.T) {
	mem := sink.NewMemory()
	ing := newTestIngester(t, mem, 32)
	path := filepath.Join(t.TempDir(), "unsealed.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = journal.EncodeHeader(f, journal.Metadata{})
	f.Close()

	if err := ing.drainIfSealed(path); err != nil {
		t.Fatalf("drainIfSealed on unsealed file should be a no-op, got: %v", err)
	}
	if got := mem.Batches("c0"); got != nil {
		t.Fatalf("expected no batches for unsealed file, got %v", got)
	}
}

func TestDrainIfSealedSplitsChannelsAndTruncates(t *testing.T) {
	mem := sink.NewMemory()
	ing := newTestIngester(t, mem, 32)
	dir := t.TempDir()
	shp := testShape()
	frameBytes := int(shp.FrameBytes())

	path := writeSealedJournal(t, dir, 5, frameBytes)

	if err := ing.drainIfSealed(path); err != nil {
		t.Fatalf("drainIfSealed: %v", err)
	}

	for i, key := range []string{"c0", "c1", "c2"} {
		batches := mem.Batches(key)
		if len(batches) != 1 {
			t.Fatalf("channel %s got %d batches, want 1", key, len(batches))
		}
		want := 5 * shp.N * shp.DType.Size()
		if len(batches[0].Payload) != want {
			t.Fatalf("channel %s payload len = %d, want %d (i=%d)", key, len(batches[0].Payload), want, i)
		}
		if len(batches[0].LogicalIndices) != 5 {
			t.Fatalf("channel %s logical indices len = %d, want 5", key, len(batches[0].LogicalIndices))
		}
	}

	timeBatches := mem.Batches("time")
	if len(timeBatches) != 1 {
		t.Fatalf("time key got %d batches, want 1", len(timeBatches))
	}
	if len(timeBatches[0].Payload) != 5*8 {
		t.Fatalf("time payload len = %d, want %d (one float64 per frame)", len(timeBatches[0].Payload), 5*8)
	}

	if journal.HasSeal(path) {
		t.Fatalf("seal should be removed after a successful drain")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	headerLen, _ := journal.HeaderLen(journal.Metadata{RingName: "test", Shape: []int{4, 3}, DType: "float32", DataMode: "line"})
	if st.Size() != int64(headerLen) {
		t.Fatalf("file size after truncation = %d, want exactly header length %d", st.Size(), headerLen)
	}
}

func TestDrainIfSealedFlushesInBatchesOfBatchFrames(t *testing.T) {
	mem := sink.NewMemory()
	ing := newTestIngester(t, mem, 2) // batch_frames=2, 5 records -> batches of 2,2,1
	dir := t.TempDir()
	shp := testShape()
	frameBytes := int(shp.FrameBytes())

	path := writeSealedJournal(t, dir, 5, frameBytes)
	if err := ing.drainIfSealed(path); err != nil {
		t.Fatalf("drainIfSealed: %v", err)
	}

	batches := mem.Batches("c0")
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3 (2+2+1)", len(batches))
	}
	sampleBytes := shp.N * shp.DType.Size()
	wantLens := []int{2 * sampleBytes, 2 * sampleBytes, 1 * sampleBytes}
	for i, b := range batches {
		if len(b.Payload) != wantLens[i] {
			t.Fatalf("batch %d payload len = %d, want %d", i, len(b.Payload), wantLens[i])
		}
	}
}

func TestDrainIfSealedEmptyFileLeavesSealed(t *testing.T) {
	mem := sink.NewMemory()
	ing := newTestIngester(t, mem, 32)
	dir := t.TempDir()
	path := writeSealedJournal(t, dir, 0, int(testShape().FrameBytes()))

	if err := ing.drainIfSealed(path); err != nil {
		t.Fatalf("drainIfSealed: %v", err)
	}
	if !journal.HasSeal(path) {
		t.Fatalf("an empty sealed file with zero records should stay sealed for the next pass")
	}
}

// TestDrainRoundTripPreservesChannelOrderAcrossRotations drains 17
// frames split across alternating sealed files the way the writer
// rotates them (5+5+5+2) and checks that each channel's concatenated
// sink sequence equals the per-channel column of every frame in logical
// order, with frame values frame_k[n,c] = 100*k + 10*n + c.
func TestDrainRoundTripPreservesChannelOrderAcrossRotations(t *testing.T) {
	mem := sink.NewMemory()
	ing := newTestIngester(t, mem, 32)
	dir := t.TempDir()
	shp := testShape()

	writeFrames := func(path string, from, to int) {
		t.Helper()
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create %s: %v", path, err)
		}
		meta := journal.Metadata{RingName: "test", Shape: []int{4, 3}, DType: "float32", DataMode: "line"}
		if err := journal.EncodeHeader(f, meta); err != nil {
			t.Fatalf("EncodeHeader: %v", err)
		}
		for k := from; k < to; k++ {
			payload := make([]byte, int(shp.FrameBytes()))
			for n := 0; n < shp.N; n++ {
				for c := 0; c < shp.C; c++ {
					v := float32(100*k + 10*n + c)
					binary.LittleEndian.PutUint32(payload[(n*shp.C+c)*4:], math.Float32bits(v))
				}
			}
			if err := journal.WriteRecord(f, int64(k), uint64(k), payload); err != nil {
				t.Fatalf("WriteRecord: %v", err)
			}
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := journal.CreateSeal(path); err != nil {
			t.Fatalf("CreateSeal: %v", err)
		}
	}

	pathA := filepath.Join(dir, "a.bin")
	pathB := filepath.Join(dir, "b.bin")
	segments := [][2]int{{0, 5}, {5, 10}, {10, 15}, {15, 17}}
	for i, seg := range segments {
		path := pathA
		if i%2 == 1 {
			path = pathB
		}
		writeFrames(path, seg[0], seg[1])
		if err := ing.drainIfSealed(path); err != nil {
			t.Fatalf("drainIfSealed segment %d: %v", i, err)
		}
	}

	for ci, key := range []string{"c0", "c1", "c2"} {
		got := mem.Concat(key)
		if len(got) != 17*shp.N*4 {
			t.Fatalf("channel %s has %d bytes, want %d", key, len(got), 17*shp.N*4)
		}
		i := 0
		for k := 0; k < 17; k++ {
			for n := 0; n < shp.N; n++ {
				v := math.Float32frombits(binary.LittleEndian.Uint32(got[i:]))
				want := float32(100*k + 10*n + ci)
				if v != want {
					t.Fatalf("channel %s frame %d sample %d = %v, want %v", key, k, n, v, want)
				}
				i += 4
			}
		}
	}

	if got := ing.plane.IngestFramesIngested.Load(); got != 17 {
		t.Fatalf("ingest_frames_ingested = %d, want 17", got)
	}
	if journal.HasSeal(pathA) || journal.HasSeal(pathB) {
		t.Fatalf("both files should be unsealed after the final drain")
	}
}

func TestNewImageModeRecordsImageShapeSidecar(t *testing.T) {
	mem := sink.NewMemory()
	dir := t.TempDir()
	shp := frame.ImageShape(2, 3, 1, frame.Uint8)
	ing, err := New(filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin"), shp, nil, 32, mem, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ing.watch.Close()

	v, ok := mem.Sidecar("image_shape")
	if !ok {
		t.Fatalf("expected image_shape sidecar to be set for image mode")
	}
	if string(v) != "[2,3,1]" {
		t.Fatalf("image_shape sidecar = %q, want [2,3,1]", v)
	}
}

func TestDrainIfSealedImageModeUsesSingleKey(t *testing.T) {
	mem := sink.NewMemory()
	dir := t.TempDir()
	shp := frame.ImageShape(2, 2, 1, frame.Uint8)
	ing := &Ingester{
		paths:       [2]string{filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")},
		shape:       shp,
		channelKeys: nil,
		batchFrames: 32,
		sink:        mem,
		plane:       metrics.New(),
	}

	path := filepath.Join(dir, "img.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	meta := journal.Metadata{RingName: "test", Shape: []int{2, 2, 1}, DType: "uint8", DataMode: "image"}
	if err := journal.EncodeHeader(f, meta); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	frameBytes := int(shp.FrameBytes())
	for k := 0; k < 3; k++ {
		payload := make([]byte, frameBytes)
		for i := range payload {
			payload[i] = byte(k)
		}
		if err := journal.WriteRecord(f, int64(k), uint64(k), payload); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	f.Close()
	if err := journal.CreateSeal(path); err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}

	if err := ing.drainIfSealed(path); err != nil {
		t.Fatalf("drainIfSealed: %v", err)
	}
	batches := mem.Batches("image")
	if len(batches) != 1 {
		t.Fatalf("got %d batches under key image, want 1", len(batches))
	}
	if len(batches[0].Payload) != 3*frameBytes {
		t.Fatalf("image batch payload len = %d, want %d", len(batches[0].Payload), 3*frameBytes)
	}
}
