package sink_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sensorplane/corestream/sink"
)

func openTestBadger(t *testing.T) *sink.Badger {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "badger")
	b, err := sink.OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadgerAppendBatchOrdering(t *testing.T) {
	b := openTestBadger(t)
	if err := b.EnsureKey("ch0"); err != nil {
		t.Fatalf("EnsureKey: %v", err)
	}
	for i := 0; i < 4; i++ {
		batch := sink.Batch{Channel: "ch0", LogicalIndices: []uint64{uint64(i)}, Payload: []byte{byte(i)}}
		if err := b.AppendBatch(batch); err != nil {
			t.Fatalf("AppendBatch: %v", err)
		}
	}
	got, err := b.ReadAll("ch0")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("ReadAll returned %d batches, want 4", len(got))
	}
	for i, payload := range got {
		if !bytes.Equal(payload, []byte{byte(i)}) {
			t.Fatalf("batch %d payload = %v, want [%d]", i, payload, i)
		}
	}
}

func TestBadgerSidecarNotReturnedByReadAll(t *testing.T) {
	b := openTestBadger(t)
	if err := b.SetSidecar("image_shape", []byte("8x8x1")); err != nil {
		t.Fatalf("SetSidecar: %v", err)
	}
	b2 := b
	got, err := b2.ReadAll("image_shape")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("sidecar key leaked into ReadAll(channel) results: %v", got)
	}
}

func TestBadgerSeqSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	b, err := sink.OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := b.AppendBatch(sink.Batch{Channel: "ch0", Payload: []byte{byte(i)}}); err != nil {
			t.Fatalf("AppendBatch: %v", err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := sink.OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen OpenBadger: %v", err)
	}
	defer b2.Close()
	if err := b2.AppendBatch(sink.Batch{Channel: "ch0", Payload: []byte{99}}); err != nil {
		t.Fatalf("AppendBatch after reopen: %v", err)
	}
	got, err := b2.ReadAll("ch0")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := [][]byte{{0}, {1}, {2}, {99}}
	if len(got) != len(want) {
		t.Fatalf("ReadAll after reopen = %v, want %v", got, want)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("ReadAll[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
