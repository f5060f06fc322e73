package frame

import (
	"encoding/binary"
	"math"
)

// putElement writes v, coerced to dtype, into buf starting at off.
func putElement(buf []byte, off int, v float32, dtype DType) {
	switch dtype {
	case Float32:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	case Uint8:
		buf[off] = clampUint8(v)
	case Int16:
		binary.LittleEndian.PutUint16(buf[off:], uint16(clampInt16(v)))
	}
}

// getElement reads a dtype-typed element out of buf at off and returns it
// widened to float32.
func getElement(buf []byte, off int, dtype DType) float32 {
	switch dtype {
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	case Uint8:
		return float32(buf[off])
	case Int16:
		return float32(int16(binary.LittleEndian.Uint16(buf[off:])))
	default:
		return 0
	}
}

func clampUint8(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func clampInt16(v float32) int16 {
	if v < math.MinInt16 {
		return math.MinInt16
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}
