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

import (
	"fmt"
	"sync/atomic"
)

// DefaultLag is the recommended consumer lag: stay at least this many
// frames behind the producer so a read never lands on a slot
// mid-overwrite.
const DefaultLag = 16

// ViewWindow returns a zero-copy view of the frame_count frames starting
// at start_logical_idx. The returned slice is only valid while the caller
// guarantees start+frame_count <= current write_idx and that the producer
// will not overwrite those slots for the duration of use (see SafeWindow
// for the lag discipline).
//
// Because the ring's slot area is mapped twice back to back (see
// attach in ring.go), a window that crosses the capacity-1 boundary is
// still a single contiguous slice: slot s and slot s+capacity alias the
// same bytes, so reading [s, s+n) for n <= capacity never needs a second
// call the way a single-mapped ring would.
func (r *Ring) ViewWindow(start, frameCount uint64) ([]byte, error) {
	if frameCount == 0 {
		return nil, nil
	}
	if frameCount > r.capacity {
		return nil, fmt.Errorf("%w: frame_count %d exceeds capacity %d", ErrWindowRange, frameCount, r.capacity)
	}
	wi := atomic.LoadUint64(r.writeIdx)
	if start+frameCount > wi {
		return nil, fmt.Errorf("%w: window [%d,%d) not yet published (write_idx=%d)", ErrWindowRange, start, start+frameCount, wi)
	}
	slot := start % r.capacity
	off := uintptr(slot) * uintptr(r.frameBytes)
	n := uintptr(frameCount) * uintptr(r.frameBytes)
	return r.buf[off : off+n : off+n], nil
}

// ViewFrame is a convenience wrapper for the single-frame case.
func (r *Ring) ViewFrame(logicalIdx uint64) ([]byte, error) {
	return r.ViewWindow(logicalIdx, 1)
}

// EstimateDrops is the consumer-side drop accounting: the producer's
// write_idx advance since the previous tick, minus the frames the
// consumer actually took. Falling behind is not an error; the excess is
// reported so nothing is lost silently.
func EstimateDrops(prevWriteIdx, curWriteIdx, consumed uint64) uint64 {
	advanced := curWriteIdx - prevWriteIdx
	if consumed >= advanced {
		return 0
	}
	return advanced - consumed
}

// SafeWindow computes the [start, start+n) range a consumer should read
// given its lag and a desired window size. A consumer that has fallen
// further behind than windowFrames+lag jumps forward to
// write_idx-lag-windowFrames rather than trying to catch up frame by
// frame through slots the producer may already be overwriting. lastRead
// is the logical index the consumer has already consumed up to; pass 0
// on a cold start.
func (r *Ring) SafeWindow(lastRead, lag, windowFrames uint64) (start, n uint64) {
	wi := r.WriteIndex()
	end := uint64(0)
	if wi > lag {
		end = wi - lag
	}
	if end <= lastRead {
		return lastRead, 0
	}
	start = lastRead
	if end-start > windowFrames+lag {
		// Fallen behind further than the ring can safely replay; skip
		// ahead instead of reading frames that may already be gone.
		start = end - windowFrames
	}
	if start > end {
		start = end
	}
	return start, end - start
}
