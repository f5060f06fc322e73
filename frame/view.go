package frame

import "fmt"

// View is a typed, read-only window over n frames' worth of canonical
// bytes: a (n,N,C) or (n,H,W,C) logical view backed by the raw bytes
// handed back from ring.ViewWindow.
type View struct {
	shape  Shape
	raw    []byte
	frames int
}

// Decode wraps raw as a View of frameCount frames in the codec's shape.
// raw must already be contiguous; see Contiguous for folding a wrapped
// window into one owned buffer before calling Decode.
func (c *Codec) Decode(raw []byte, frameCount int) (*View, error) {
	want := int(c.shape.FrameBytes()) * frameCount
	if len(raw) != want {
		return nil, fmt.Errorf("%w: got %d bytes for %d frames of %s, want %d", ErrByteLength, len(raw), frameCount, c.shape, want)
	}
	return &View{shape: c.shape, raw: raw, frames: frameCount}, nil
}

// Frames returns the number of frames this view covers.
func (v *View) Frames() int { return v.frames }

// Shape returns the view's logical layout.
func (v *View) Shape() Shape { return v.shape }

// Frame returns the raw bytes of frame i, 0 <= i < Frames().
func (v *View) Frame(i int) []byte {
	fb := int(v.shape.FrameBytes())
	return v.raw[i*fb : (i+1)*fb]
}

// LineAt returns sample n, channel c of frame i as a float32, regardless
// of the configured dtype. Valid only when Shape().Mode == Line.
func (v *View) LineAt(i, n, c int) float32 {
	sz := v.shape.DType.Size()
	off := i*int(v.shape.FrameBytes()) + (n*v.shape.C+c)*sz
	return getElement(v.raw, off, v.shape.DType)
}

// ImageAt returns pixel (h,w) of plane c of frame i as a float32,
// regardless of the configured dtype. Valid only when Shape().Mode ==
// Image.
func (v *View) ImageAt(i, h, w, c int) float32 {
	sz := v.shape.DType.Size()
	off := i*int(v.shape.FrameBytes()) + (h*v.shape.W*v.shape.C+w*v.shape.C+c)*sz
	return getElement(v.raw, off, v.shape.DType)
}
