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

import "sync/atomic"

// Publish writes one frame (exactly FrameBytes() bytes) into the next
// slot and advances write_idx by one. There is only ever one producer;
// Publish does not take a lock.
//
// Ordering: the memcpy into the slot happens before the atomic store that
// advances write_idx, so any reader that observes the new write_idx is
// guaranteed to see every byte of the frame that index now covers.
func (r *Ring) Publish(frame []byte) error {
	if uint64(len(frame)) != r.frameBytes {
		return ErrFrameSize
	}
	wi := atomic.LoadUint64(r.writeIdx)
	slot := wi % r.capacity
	off := uintptr(slot) * uintptr(r.frameBytes)
	copy(r.buf[off:off+uintptr(r.frameBytes)], frame)
	atomic.StoreUint64(r.writeIdx, wi+1)
	return nil
}

// PublishBatch publishes frames as independent sequential Publish
// calls, so a reader observes the batch as a linearisable sequence. An
// empty batch is a no-op and leaves write_idx unchanged.
func (r *Ring) PublishBatch(frames [][]byte) error {
	for _, f := range frames {
		if err := r.Publish(f); err != nil {
			return err
		}
	}
	return nil
}
