package frame

// ExtractChannel copies the N dtype-sized elements belonging to one
// channel out of a single line-mode frame, producing the per-channel
// slice the durable sink stores. The source frame is (N,C)
// C-contiguous, so channel elements are strided by C; this is a pure
// byte copy, no dtype decode/re-encode, since the stored representation
// doesn't change.
func ExtractChannel(frameBytes []byte, shape Shape, channel int) []byte {
	sz := shape.DType.Size()
	out := make([]byte, shape.N*sz)
	for n := 0; n < shape.N; n++ {
		srcOff := (n*shape.C + channel) * sz
		copy(out[n*sz:(n+1)*sz], frameBytes[srcOff:srcOff+sz])
	}
	return out
}
