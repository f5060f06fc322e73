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

//go:build linux || darwin

package ring

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize caches unix.Getpagesize(), which never changes within a
// process's lifetime.
var pageSize = uintptr(unix.Getpagesize())

func roundUpToPage(n uintptr) uintptr {
	rem := n % pageSize
	if rem == 0 {
		return n
	}
	return n + (pageSize - rem)
}

// mmap wraps the raw mmap(2) syscall so that a fixed address can be
// requested (golang.org/x/sys/unix.Mmap always passes addr=0, which can't
// express the MAP_FIXED double-mapping trick window.go and ring.go rely on
// to make a wrapped window appear contiguous).
func mmap(addr uintptr, length uintptr, prot int, flags int, fd int, offset int64) (uintptr, error) {
	r0, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, length,
		uintptr(prot), uintptr(flags), uintptr(fd), uintptr(offset))
	if errno != 0 {
		return 0, fmt.Errorf("ring: mmap: %w", errno)
	}
	return r0, nil
}

func munmap(addr uintptr, length uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, length, 0)
	if errno != 0 {
		return fmt.Errorf("ring: munmap: %w", errno)
	}
	return nil
}

// asByteSlice reinterprets a raw mapped address as a Go byte slice without
// a copy. The caller is responsible for ensuring the mapping outlives any
// use of the returned slice.
func asByteSlice(base uintptr, size int) []byte {
	var b []byte
	hdr := (*sliceHeader)(unsafe.Pointer(&b))
	hdr.Data = base
	hdr.Len = size
	hdr.Cap = size
	return b
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}
