package frame

import "errors"

// ErrShapeMismatch is returned when a producer-supplied array's dimensions
// don't match any of the accepted layouts for the codec's configured mode.
var ErrShapeMismatch = errors.New("frame: shape mismatch")

// ErrByteLength is returned when a decode input's length isn't exactly
// the configured frame size times the requested frame count.
var ErrByteLength = errors.New("frame: byte length does not match frame count")
