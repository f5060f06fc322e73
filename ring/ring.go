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

// Package ring implements the single-producer/multiple-consumer
// shared-memory frame ring: a fixed-size region of (capacity × frame_bytes)
// byte slots, published into by one producer and viewed, zero-copy, by any
// number of readers in the same or another process.
//
// The region is backed by a file under a runtime directory (by default
// /dev/shm, already a tmpfs on Linux, which satisfies "an OS-global name
// visible within the host" without requiring POSIX shm_open/shm_unlink).
// The slot area is mapped twice, back to back, using the classic
// double-mmap trick: a window that wraps past capacity-1 is then just a
// contiguous slice starting partway into the first copy and running into
// the second. See window.go.
//
// The only mutable shared state is a single little-endian u64 write_idx
// living in a one-page header ahead of the slots. There are no locks on
// the publish/view path: a monotonic atomic counter with a release store
// on publish and an acquire load on view is sufficient, because every byte
// of a frame is written before write_idx is advanced past it.
package ring

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ring is a handle to a shared-memory frame ring, either freshly created
// or attached to an existing one.
type Ring struct {
	file    *os.File
	creator bool

	capacity   uint64
	frameBytes uint64
	regionSize uintptr // capacity*frameBytes, the logical slot area size
	mapSize    uintptr // regionSize rounded up to a page, the mapped size

	headerBase uintptr
	ringBase   uintptr
	ringOne    uintptr
	ringTwo    uintptr

	buf []byte // contiguous view over [ringOne, ringOne+2*mapSize)

	writeIdx *uint64 // points into headerBase's first 8 bytes

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

const headerPages = 1

// Create allocates a new shared-memory region at path, sized for
// capacity frames of frameBytes each, and returns a Ring with write_idx
// initialized to zero. The file is truncated to the right size and
// pre-zeroed by the OS.
func Create(path string, capacity, frameBytes uint64) (*Ring, error) {
	if capacity == 0 || frameBytes == 0 {
		return nil, fmt.Errorf("ring: capacity and frameBytes must be > 0")
	}
	regionSize := uintptr(capacity) * uintptr(frameBytes)
	if regionSize%pageSize != 0 {
		return nil, ErrNotAligned
	}

	if err := os.MkdirAll(parentDir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ring: mkdir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ring: create: %w", err)
	}

	total := int64(headerPages)*int64(pageSize) + int64(regionSize)
	if err := f.Truncate(total); err != nil {
		f.Close()
		return nil, fmt.Errorf("ring: truncate: %w", err)
	}

	r, err := attach(f, capacity, frameBytes, regionSize, true)
	if err != nil {
		f.Close()
		return nil, err
	}
	atomic.StoreUint64(r.writeIdx, 0)
	return r, nil
}

// Open attaches to an existing shared-memory region at path. It fails
// with ErrLayoutMismatch if the file's size disagrees with the requested
// capacity and frameBytes.
func Open(path string, capacity, frameBytes uint64) (*Ring, error) {
	regionSize := uintptr(capacity) * uintptr(frameBytes)
	if regionSize == 0 || regionSize%pageSize != 0 {
		return nil, ErrNotAligned
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ring: open: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ring: stat: %w", err)
	}
	want := int64(headerPages)*int64(pageSize) + int64(regionSize)
	if st.Size() != want {
		f.Close()
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrLayoutMismatch, st.Size(), want)
	}

	return attach(f, capacity, frameBytes, regionSize, false)
}

func attach(f *os.File, capacity, frameBytes uint64, regionSize uintptr, creator bool) (*Ring, error) {
	mapSize := roundUpToPage(regionSize)

	headerBase, err := mmap(0, pageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED, int(f.Fd()), 0)
	if err != nil {
		return nil, err
	}

	dataOffset := int64(headerPages) * int64(pageSize)

	// Reserve 2*mapSize of address space, then carve two MAP_FIXED
	// mappings of the same file region back to back so that a window
	// straddling the capacity-1 boundary is just a contiguous slice.
	ringBase, err := mmap(0, mapSize<<1,
		unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE, -1, 0)
	if err != nil {
		munmap(headerBase, pageSize)
		return nil, err
	}

	ringOne, err := mmap(ringBase, mapSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, int(f.Fd()), dataOffset)
	if err != nil {
		munmap(headerBase, pageSize)
		munmap(ringBase, mapSize<<1)
		return nil, err
	}
	if ringOne != ringBase {
		munmap(headerBase, pageSize)
		munmap(ringBase, mapSize<<1)
		return nil, fmt.Errorf("ring: mmap split our MAP_FIXED call")
	}

	ringTwo, err := mmap(ringBase+mapSize, mapSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, int(f.Fd()), dataOffset)
	if err != nil {
		munmap(headerBase, pageSize)
		munmap(ringBase, mapSize<<1)
		return nil, err
	}
	if ringTwo != ringOne+mapSize {
		munmap(headerBase, pageSize)
		munmap(ringBase, mapSize<<1)
		return nil, fmt.Errorf("ring: mmap split our mirror MAP_FIXED call")
	}

	r := &Ring{
		file:       f,
		creator:    creator,
		capacity:   capacity,
		frameBytes: frameBytes,
		regionSize: regionSize,
		mapSize:    mapSize,
		headerBase: headerBase,
		ringBase:   ringBase,
		ringOne:    ringOne,
		ringTwo:    ringTwo,
		buf:        asByteSlice(ringBase, int(mapSize<<1)),
		writeIdx:   (*uint64)(unsafe.Pointer(headerBase)),
	}
	return r, nil
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// Capacity returns the ring's fixed frame capacity.
func (r *Ring) Capacity() uint64 { return r.capacity }

// FrameBytes returns the fixed per-frame byte size F.
func (r *Ring) FrameBytes() uint64 { return r.frameBytes }

// WriteIndex returns the current monotonic write_idx with acquire
// semantics: any frame with logical index < WriteIndex() is guaranteed to
// be fully visible to this reader.
func (r *Ring) WriteIndex() uint64 {
	return atomic.LoadUint64(r.writeIdx)
}

// Close unmaps the region and closes the backing file descriptor. If
// unlink is true and this Ring created the region, the backing file is
// removed as well, so a clean teardown leaves nothing under the runtime
// directory. A region left behind by a hard kill is adopted by the next
// Open.
func (r *Ring) Close(unlink bool) error {
	var outErr error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := munmap(r.headerBase, pageSize); err != nil {
			outErr = err
		}
		if err := munmap(r.ringOne, r.mapSize); err != nil && outErr == nil {
			outErr = err
		}
		if err := munmap(r.ringTwo, r.mapSize); err != nil && outErr == nil {
			outErr = err
		}
		if err := munmap(r.ringBase, r.mapSize<<1); err != nil && outErr == nil {
			outErr = err
		}
		name := r.file.Name()
		if err := r.file.Close(); err != nil && outErr == nil {
			outErr = err
		}
		r.closed = true
		if unlink && r.creator {
			_ = os.Remove(name)
		}
	})
	return outErr
}
