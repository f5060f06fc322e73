// Package journal implements the rotating dual-file binary append-only
// log fed from the ring: two alternating files, a seal-file handoff to
// the ingester, and rotation on frame count, wall-clock elapsed, or an
// explicit control flag.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Magic is the 7-byte file signature every journal file opens with.
var Magic = [7]byte{'S', 'C', 'B', 'I', 'N', 0, 0}

// Version is the current on-disk header version.
const Version uint16 = 1

// recordHeaderLen is the fixed 16-byte per-frame header: u64
// timestamp_ns, u64 frame_logical_idx.
const recordHeaderLen = 16

// Metadata is the JSON blob embedded in a journal file's header,
// describing the shape of every record's payload.
type Metadata struct {
	RingName string `json:"ring_name"`
	Shape    []int  `json:"frame_shape"`
	DType    string `json:"dtype"`
	DataMode string `json:"data_mode"`
	Version  uint16 `json:"version"`
}

// EncodeHeader writes magic || version || metadata_len || metadata to w.
func EncodeHeader(w io.Writer, meta Metadata) error {
	meta.Version = Version
	body, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("journal: marshal metadata: %w", err)
	}

	buf := make([]byte, 0, len(Magic)+2+4+len(body))
	buf = append(buf, Magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(body)))
	buf = append(buf, body...)

	_, err = w.Write(buf)
	return err
}

// HeaderLen returns the total byte length EncodeHeader would write for
// meta, without actually serializing to a writer.
func HeaderLen(meta Metadata) (int, error) {
	meta.Version = Version
	body, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}
	return len(Magic) + 2 + 4 + len(body), nil
}

// DecodeHeader reads and validates magic || version || metadata_len ||
// metadata from r, returning the parsed Metadata and the header's total
// byte length.
func DecodeHeader(r io.Reader) (Metadata, int, error) {
	var fixed [len(Magic) + 2 + 4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Metadata{}, 0, fmt.Errorf("journal: read header: %w", err)
	}
	var magic [7]byte
	copy(magic[:], fixed[:7])
	if magic != Magic {
		return Metadata{}, 0, fmt.Errorf("journal: bad magic %q", magic)
	}
	version := binary.LittleEndian.Uint16(fixed[7:9])
	metaLen := binary.LittleEndian.Uint32(fixed[9:13])

	body := make([]byte, metaLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Metadata{}, 0, fmt.Errorf("journal: read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return Metadata{}, 0, fmt.Errorf("journal: unmarshal metadata: %w", err)
	}
	meta.Version = version
	return meta, len(fixed) + int(metaLen), nil
}

// WriteRecord appends one 16-byte record header plus payload to w as a
// single buffer, so the write is all-or-nothing at the application
// level.
func WriteRecord(w io.Writer, tsNs int64, logicalIdx uint64, payload []byte) error {
	buf := make([]byte, 0, recordHeaderLen+len(payload))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(tsNs))
	buf = binary.LittleEndian.AppendUint64(buf, logicalIdx)
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// ReadRecord reads one record's header and payloadLen bytes of payload
// from r. A short read on either part is reported via io.ErrUnexpectedEOF
// or io.EOF so the caller can treat it as a clean/truncated tail.
func ReadRecord(r io.Reader, payloadLen int) (tsNs int64, logicalIdx uint64, payload []byte, err error) {
	var hdr [recordHeaderLen]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return 0, 0, nil, err
	}
	tsNs = int64(binary.LittleEndian.Uint64(hdr[0:8]))
	logicalIdx = binary.LittleEndian.Uint64(hdr[8:16])

	payload = make([]byte, payloadLen)
	if _, err = io.ReadFull(r, payload); err != nil {
		return tsNs, logicalIdx, nil, err
	}
	return tsNs, logicalIdx, payload, nil
}
