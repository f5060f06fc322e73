// Package frame bridges between producer-natural array shapes and the
// ring's canonical fixed-size byte frame: validating, reshaping, and
// dtype-coercing line or image arrays on the way in, and handing back
// typed views (with a contiguous-copy fallback across a ring wrap) on
// the way out.
package frame

import "fmt"

// DType is the element type samples are stored as. Only the types the
// acquisition pipeline actually produces are supported; anything else is
// a configuration error caught at startup, not a runtime one.
type DType int

const (
	Float32 DType = iota
	Uint8
	Int16
)

// Size returns the element's width in bytes.
func (d DType) Size() int {
	switch d {
	case Float32:
		return 4
	case Uint8:
		return 1
	case Int16:
		return 2
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	default:
		return "unknown"
	}
}

// ParseDType maps a config string to a DType.
func ParseDType(s string) (DType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "uint8":
		return Uint8, nil
	case "int16":
		return Int16, nil
	default:
		return 0, fmt.Errorf("frame: unknown dtype %q", s)
	}
}

// Mode selects which of the two logical layouts a Shape describes.
type Mode int

const (
	Line Mode = iota
	Image
)

// Shape is the canonical logical layout a Codec normalizes producer
// arrays into: a Line (N,C) or Image (H,W,C) description. Exactly one
// of the two groups of fields is meaningful, selected by Mode.
type Shape struct {
	Mode Mode

	N int // line: number of samples
	C int // line: number of channels; image: number of planes

	H int // image: height
	W int // image: width

	DType DType
}

// LineShape builds a Shape for N samples across C channels.
func LineShape(n, c int, dtype DType) Shape {
	return Shape{Mode: Line, N: n, C: c, DType: dtype}
}

// ImageShape builds a Shape for an H×W×C image.
func ImageShape(h, w, c int, dtype DType) Shape {
	return Shape{Mode: Image, H: h, W: w, C: c, DType: dtype}
}

// Elements returns the number of scalar elements in one frame.
func (s Shape) Elements() int {
	switch s.Mode {
	case Line:
		return s.N * s.C
	case Image:
		return s.H * s.W * s.C
	default:
		return 0
	}
}

// FrameBytes returns F, the fixed per-frame byte size:
// F = element_size(T) * prod(logical_shape).
func (s Shape) FrameBytes() uint64 {
	return uint64(s.Elements() * s.DType.Size())
}

func (s Shape) String() string {
	switch s.Mode {
	case Line:
		return fmt.Sprintf("line(N=%d,C=%d,%s)", s.N, s.C, s.DType)
	case Image:
		return fmt.Sprintf("image(H=%d,W=%d,C=%d,%s)", s.H, s.W, s.C, s.DType)
	default:
		return "unknown shape"
	}
}
