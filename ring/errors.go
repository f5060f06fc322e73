// {{{ Copyright (c) Paul R. Tagliamonte <paultag@gmail.com> 2020-2021
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package ring

import "errors"

var (
	// ErrLayoutMismatch is returned by Open when the existing region's
	// capacity or frame size disagrees with what the caller asked for.
	ErrLayoutMismatch = errors.New("ring: layout mismatch")

	// ErrFrameSize is returned by Publish when frame.len != frameBytes.
	ErrFrameSize = errors.New("ring: frame size mismatch")

	// ErrNotAligned is returned at creation time when capacity*frameBytes
	// is not a multiple of the OS page size. The double-mapping wrap
	// trick in attach (ring.go) places the mirror copy at exactly
	// regionSize past the first, so that address must be page-aligned
	// for the second MAP_FIXED call to land where slot arithmetic
	// expects it.
	ErrNotAligned = errors.New("ring: capacity*frameBytes must be page aligned")

	// ErrWindowRange is returned by ViewWindow when the requested window
	// spans more frames than the ring's capacity or would run ahead of
	// write_idx. It does not check the lag margin; see SafeWindow.
	ErrWindowRange = errors.New("ring: window out of safe range")

	// ErrClosed is returned by any operation on a Ring after Close.
	ErrClosed = errors.New("ring: closed")
)
