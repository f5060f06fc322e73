package journal_test

import (
	"bytes"
	"testing"

	"github.com/sensorplane/corestream/journal"
)

func TestHeaderRoundTrip(t *testing.T) {
	meta := journal.Metadata{
		RingName: "sensor_ring",
		Shape:    []int{4, 3},
		DType:    "float32",
		DataMode: "line",
	}
	var buf bytes.Buffer
	if err := journal.EncodeHeader(&buf, meta); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}

	got, n, err := journal.DecodeHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got.RingName != meta.RingName || got.DataMode != meta.DataMode || got.DType != meta.DType {
		t.Fatalf("DecodeHeader = %+v, want fields matching %+v", got, meta)
	}
	if got.Version != journal.Version {
		t.Fatalf("decoded version = %d, want %d", got.Version, journal.Version)
	}
	wantLen, _ := journal.HeaderLen(meta)
	if n != wantLen {
		t.Fatalf("header length = %d, want %d", n, wantLen)
	}
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 13))
	if _, _, err := journal.DecodeHeader(buf); err == nil {
		t.Fatalf("expected an error for a bad magic")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4}
	if err := journal.WriteRecord(&buf, 12345, 7, payload); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	ts, idx, got, err := journal.ReadRecord(&buf, len(payload))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if ts != 12345 || idx != 7 || !bytes.Equal(got, payload) {
		t.Fatalf("ReadRecord = (%d,%d,%v), want (12345,7,%v)", ts, idx, got, payload)
	}
}

func TestReadRecordShortTailIsCleanEOF(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3})
	if _, _, _, err := journal.ReadRecord(buf, 4); err == nil {
		t.Fatalf("expected a short-read error for a truncated tail")
	}
}

func TestSealLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.bin"
	if journal.HasSeal(path) {
		t.Fatalf("fresh path should have no seal")
	}
	if err := journal.CreateSeal(path); err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	if !journal.HasSeal(path) {
		t.Fatalf("expected HasSeal true after CreateSeal")
	}
	if err := journal.RemoveSeal(path); err != nil {
		t.Fatalf("RemoveSeal: %v", err)
	}
	if journal.HasSeal(path) {
		t.Fatalf("expected HasSeal false after RemoveSeal")
	}
}
