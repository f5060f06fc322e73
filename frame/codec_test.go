package frame_test

import (
	"testing"

	"github.com/sensorplane/corestream/frame"
)

func TestEncodeLineDirectOrientation(t *testing.T) {
	c := frame.New(frame.LineShape(4, 3, frame.Float32))
	data := make([]float32, 12)
	for n := 0; n < 4; n++ {
		for ch := 0; ch < 3; ch++ {
			data[n*3+ch] = float32(10*n + ch)
		}
	}
	frames, err := c.Encode(data, []int{4, 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	view, err := c.Decode(frames[0], 1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := view.LineAt(0, 2, 1); got != 21 {
		t.Fatalf("LineAt(0,2,1) = %v, want 21", got)
	}
}

func TestEncodeLineTransposedOrientation(t *testing.T) {
	c := frame.New(frame.LineShape(4, 3, frame.Float32))
	// (C,N) layout: data[c*N+n]
	data := make([]float32, 12)
	for n := 0; n < 4; n++ {
		for ch := 0; ch < 3; ch++ {
			data[ch*4+n] = float32(10*n + ch)
		}
	}
	frames, err := c.Encode(data, []int{3, 4})
	if err != nil {
		t.Fatalf("Encode transposed: %v", err)
	}
	view, _ := c.Decode(frames[0], 1)
	if got := view.LineAt(0, 2, 1); got != 21 {
		t.Fatalf("LineAt(0,2,1) = %v, want 21 after transpose normalization", got)
	}
}

func TestEncodeLineBatch(t *testing.T) {
	c := frame.New(frame.LineShape(2, 2, frame.Float32))
	data := make([]float32, 3*2*2)
	for b := 0; b < 3; b++ {
		for n := 0; n < 2; n++ {
			for ch := 0; ch < 2; ch++ {
				data[b*4+n*2+ch] = float32(100*b + 10*n + ch)
			}
		}
	}
	frames, err := c.Encode(data, []int{3, 2, 2})
	if err != nil {
		t.Fatalf("Encode batch: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	view, _ := c.Decode(frames[2], 1)
	if got := view.LineAt(0, 1, 1); got != 211 {
		t.Fatalf("frame 2 LineAt(0,1,1) = %v, want 211", got)
	}
}

func TestEncodeLineShapeMismatch(t *testing.T) {
	c := frame.New(frame.LineShape(4, 3, frame.Float32))
	if _, err := c.Encode(make([]float32, 20), []int{5, 4}); err == nil {
		t.Fatalf("expected ErrShapeMismatch")
	}
}

func TestEncodeImageExact(t *testing.T) {
	c := frame.New(frame.ImageShape(2, 2, 3, frame.Uint8))
	data := make([]float32, 2*2*3)
	for i := range data {
		data[i] = float32(i)
	}
	frames, err := c.Encode(data, []int{2, 2, 3})
	if err != nil {
		t.Fatalf("Encode image: %v", err)
	}
	view, _ := c.Decode(frames[0], 1)
	if got := view.ImageAt(0, 1, 1, 2); got != 11 {
		t.Fatalf("ImageAt(0,1,1,2) = %v, want 11", got)
	}
}

func TestEncodeImagePromoted2D(t *testing.T) {
	c := frame.New(frame.ImageShape(2, 2, 1, frame.Uint8))
	data := []float32{1, 2, 3, 4}
	frames, err := c.Encode(data, []int{2, 2})
	if err != nil {
		t.Fatalf("Encode promoted image: %v", err)
	}
	view, _ := c.Decode(frames[0], 1)
	if got := view.ImageAt(0, 1, 0, 0); got != 3 {
		t.Fatalf("ImageAt(0,1,0,0) = %v, want 3", got)
	}
}

func TestEncodeImageBatch(t *testing.T) {
	c := frame.New(frame.ImageShape(2, 1, 1, frame.Uint8))
	data := []float32{1, 2, 10, 20}
	frames, err := c.Encode(data, []int{2, 2, 1, 1})
	if err != nil {
		t.Fatalf("Encode image batch: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
}

func TestDecodeByteLengthMismatch(t *testing.T) {
	c := frame.New(frame.LineShape(4, 3, frame.Float32))
	if _, err := c.Decode(make([]byte, 10), 1); err == nil {
		t.Fatalf("expected ErrByteLength")
	}
}

func TestContiguousSingleSegmentIsZeroCopy(t *testing.T) {
	seg := []byte{1, 2, 3}
	out := frame.Contiguous(seg)
	if &out[0] != &seg[0] {
		t.Fatalf("expected Contiguous to return the same backing array for a single segment")
	}
}

func TestExtractChannel(t *testing.T) {
	c := frame.New(frame.LineShape(4, 3, frame.Float32))
	data := make([]float32, 12)
	for n := 0; n < 4; n++ {
		for ch := 0; ch < 3; ch++ {
			data[n*3+ch] = float32(10*n + ch)
		}
	}
	frames, err := c.Encode(data, []int{4, 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	col := frame.ExtractChannel(frames[0], c.Shape(), 1)
	view, err := frame.New(frame.LineShape(4, 1, frame.Float32)).Decode(col, 1)
	if err != nil {
		t.Fatalf("Decode extracted channel: %v", err)
	}
	for n := 0; n < 4; n++ {
		if got := view.LineAt(0, n, 0); got != float32(10*n+1) {
			t.Fatalf("extracted channel[%d] = %v, want %v", n, got, 10*n+1)
		}
	}
}

func TestContiguousMultiSegmentCopies(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3, 4}
	out := frame.Contiguous(a, b)
	if string(out) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("Contiguous(a,b) = %v, want [1 2 3 4]", out)
	}
}
