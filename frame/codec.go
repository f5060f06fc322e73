package frame

import "fmt"

// Codec normalizes producer-supplied arrays into the Ring's canonical
// fixed-size byte frame, and hands typed views back out on read.
type Codec struct {
	shape Shape
}

// New returns a Codec fixed to shape for its lifetime, matching the
// Ring's frame_bytes being immutable after creation.
func New(shape Shape) *Codec {
	return &Codec{shape: shape}
}

// Shape returns the codec's configured logical layout.
func (c *Codec) Shape() Shape {
	return c.shape
}

// FrameBytes returns the fixed per-frame byte size this codec produces.
func (c *Codec) FrameBytes() uint64 {
	return c.shape.FrameBytes()
}

// Encode normalizes data (flattened, row-major, dims describing its
// logical shape) into one or more canonical frames, ready for
// ring.Publish / ring.PublishBatch. Line mode takes (N,C), (C,N), or a
// batch (B,N,C); image mode takes (H,W) (promoted to (H,W,1)), (H,W,C),
// or a batch (B,H,W,C).
func (c *Codec) Encode(data []float32, dims []int) ([][]byte, error) {
	switch c.shape.Mode {
	case Line:
		return c.encodeLine(data, dims)
	case Image:
		return c.encodeImage(data, dims)
	default:
		return nil, fmt.Errorf("frame: codec has no mode configured")
	}
}

func (c *Codec) encodeLine(data []float32, dims []int) ([][]byte, error) {
	n, ch := c.shape.N, c.shape.C

	switch len(dims) {
	case 2:
		switch {
		case dims[0] == n && dims[1] == ch:
			if len(data) != n*ch {
				return nil, fmt.Errorf("%w: line data has %d elements, shape (%d,%d) wants %d", ErrShapeMismatch, len(data), n, ch, n*ch)
			}
			return [][]byte{c.packLine(data, false)}, nil
		case dims[0] == ch && dims[1] == n:
			if len(data) != n*ch {
				return nil, fmt.Errorf("%w: line data has %d elements, shape (%d,%d) wants %d", ErrShapeMismatch, len(data), ch, n, n*ch)
			}
			return [][]byte{c.packLine(data, true)}, nil
		default:
			return nil, fmt.Errorf("%w: line shape (%d,%d) doesn't match configured (N=%d,C=%d)", ErrShapeMismatch, dims[0], dims[1], n, ch)
		}
	case 3:
		b := dims[0]
		if dims[1] != n || dims[2] != ch {
			return nil, fmt.Errorf("%w: batch line shape (%d,%d,%d) doesn't match configured (N=%d,C=%d)", ErrShapeMismatch, dims[0], dims[1], dims[2], n, ch)
		}
		stride := n * ch
		if len(data) != b*stride {
			return nil, fmt.Errorf("%w: batch line data has %d elements, shape (%d,%d,%d) wants %d", ErrShapeMismatch, len(data), b, n, ch, b*stride)
		}
		frames := make([][]byte, b)
		for i := 0; i < b; i++ {
			frames[i] = c.packLine(data[i*stride:(i+1)*stride], false)
		}
		return frames, nil
	default:
		return nil, fmt.Errorf("%w: line path accepts 2-D (N,C)/(C,N) or 3-D (B,N,C) arrays, got %d dims", ErrShapeMismatch, len(dims))
	}
}

func (c *Codec) encodeImage(data []float32, dims []int) ([][]byte, error) {
	h, w, ch := c.shape.H, c.shape.W, c.shape.C

	switch len(dims) {
	case 2:
		if ch != 1 {
			return nil, fmt.Errorf("%w: 2-D (H,W) input only promotes to (H,W,1), configured C=%d", ErrShapeMismatch, ch)
		}
		if dims[0] != h || dims[1] != w {
			return nil, fmt.Errorf("%w: image shape (%d,%d) doesn't match configured (H=%d,W=%d)", ErrShapeMismatch, dims[0], dims[1], h, w)
		}
		return [][]byte{c.packImage(data)}, nil
	case 3:
		if dims[0] != h || dims[1] != w || dims[2] != ch {
			return nil, fmt.Errorf("%w: image shape (%d,%d,%d) doesn't match configured (H=%d,W=%d,C=%d)", ErrShapeMismatch, dims[0], dims[1], dims[2], h, w, ch)
		}
		return [][]byte{c.packImage(data)}, nil
	case 4:
		b := dims[0]
		if dims[1] != h || dims[2] != w || dims[3] != ch {
			return nil, fmt.Errorf("%w: batch image shape (%d,%d,%d,%d) doesn't match configured (H=%d,W=%d,C=%d)", ErrShapeMismatch, dims[0], dims[1], dims[2], dims[3], h, w, ch)
		}
		stride := h * w * ch
		frames := make([][]byte, b)
		for i := 0; i < b; i++ {
			frames[i] = c.packImage(data[i*stride : (i+1)*stride])
		}
		return frames, nil
	default:
		return nil, fmt.Errorf("%w: image path accepts (H,W), (H,W,C), or (B,H,W,C) arrays, got %d dims", ErrShapeMismatch, len(dims))
	}
}

// packLine writes n*ch elements into a canonical (N,C) C-contiguous
// frame, transposing on the way in if the caller's data is (C,N).
func (c *Codec) packLine(data []float32, transposed bool) []byte {
	n, ch := c.shape.N, c.shape.C
	sz := c.shape.DType.Size()
	buf := make([]byte, n*ch*sz)
	for i := 0; i < n; i++ {
		for j := 0; j < ch; j++ {
			var v float32
			if transposed {
				v = data[j*n+i]
			} else {
				v = data[i*ch+j]
			}
			putElement(buf, (i*ch+j)*sz, v, c.shape.DType)
		}
	}
	return buf
}

// packImage copies h*w*ch already-row-major elements into a canonical
// (H,W,C) frame, coercing dtype as it goes.
func (c *Codec) packImage(data []float32) []byte {
	sz := c.shape.DType.Size()
	buf := make([]byte, len(data)*sz)
	for i, v := range data {
		putElement(buf, i*sz, v, c.shape.DType)
	}
	return buf
}
