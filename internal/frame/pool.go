// go-llcp
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-llcp.
//
// go-llcp is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-llcp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-llcp; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package frame

import "sync"

const (
	smallBufferSize = 64
	largeBufferSize = 512
)

var (
	smallPool = sync.Pool{New: func() any { b := make([]byte, smallBufferSize); return &b }}
	largePool = sync.Pool{New: func() any { b := make([]byte, largeBufferSize); return &b }}
)

// GetSmallBuffer returns a pooled buffer of length size (size <= 64 uses the small pool)
func GetSmallBuffer(size int) []byte {
	return GetBuffer(size)
}

// GetBuffer returns a buffer of length size. Buffers larger than the pooled
// sizes are allocated directly and are dropped by PutBuffer.
func GetBuffer(size int) []byte {
	switch {
	case size <= smallBufferSize:
		bp, _ := smallPool.Get().(*[]byte)
		return (*bp)[:size]
	case size <= largeBufferSize:
		bp, _ := largePool.Get().(*[]byte)
		return (*bp)[:size]
	default:
		return make([]byte, size)
	}
}

// PutBuffer returns a buffer obtained from GetBuffer to its pool.
func PutBuffer(buf []byte) {
	if buf == nil {
		return
	}
	full := buf[:cap(buf)]
	switch cap(buf) {
	case smallBufferSize:
		smallPool.Put(&full)
	case largeBufferSize:
		largePool.Put(&full)
	}
}
