package producer

import "math"

// Synthetic is a deterministic, dependency-free stand-in for a real
// sensor. It is driven purely by a frame counter, so a fixed sequence
// of calls always produces the same bytes, which is what the round-trip
// tests and `producer-sim` need.
type Synthetic struct {
	mode Mode
	n, c int
	h, w int
	k    int
}

// Mode selects which array shape Next emits.
type Mode int

const (
	LineMode Mode = iota
	ImageMode
)

// NewSyntheticLine returns a Source emitting (n,c) line frames: channel
// 0 is a sine wave, channel 1 a ramp, and any further channel a phase-
// shifted sine, so multi-channel fan-out is exercised even at small C.
func NewSyntheticLine(n, c int) *Synthetic {
	return &Synthetic{mode: LineMode, n: n, c: c}
}

// NewSyntheticImage returns a Source emitting (h,w,c) image frames: a
// checkerboard pattern that inverts every frame, so a consumer can tell
// frames apart at a glance.
func NewSyntheticImage(h, w, c int) *Synthetic {
	return &Synthetic{mode: ImageMode, h: h, w: w, c: c}
}

// Next implements Source.
func (s *Synthetic) Next() ([]float32, []int, error) {
	defer func() { s.k++ }()
	switch s.mode {
	case LineMode:
		return s.nextLine(), []int{s.n, s.c}, nil
	default:
		return s.nextImage(), []int{s.h, s.w, s.c}, nil
	}
}

func (s *Synthetic) nextLine() []float32 {
	out := make([]float32, s.n*s.c)
	phase := float64(s.k) * 0.1
	for i := 0; i < s.n; i++ {
		t := float64(i) / float64(s.n)
		for ch := 0; ch < s.c; ch++ {
			var v float64
			switch ch {
			case 0:
				v = math.Sin(2*math.Pi*t + phase)
			case 1:
				v = t
			default:
				v = math.Sin(2*math.Pi*t + phase + float64(ch)*math.Pi/4)
			}
			out[i*s.c+ch] = float32(v)
		}
	}
	return out
}

func (s *Synthetic) nextImage() []float32 {
	out := make([]float32, s.h*s.w*s.c)
	invert := s.k%2 == 1
	i := 0
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			on := (x+y)%2 == 0
			if invert {
				on = !on
			}
			var v float32
			if on {
				v = 1
			}
			for ch := 0; ch < s.c; ch++ {
				out[i] = v
				i++
			}
		}
	}
	return out
}

// Close implements Source; Synthetic holds no resources.
func (s *Synthetic) Close() error { return nil }
