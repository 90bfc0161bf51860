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

import (
	"bytes"
	"errors"
	"fmt"
)

// Port framing errors
var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrNoStartCode      = errors.New("no start code")
	ErrIncomplete       = errors.New("incomplete frame")
	ErrNack             = errors.New("NACK received")
)

// CalculateChecksum returns the 8-bit sum of data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidateChecksum returns true when the data does NOT sum to zero,
// i.e. when the receiver should NACK.
func ValidateChecksum(data []byte) bool {
	return CalculateChecksum(data) != 0
}

// CalculateDataChecksum returns the DCS byte for a TFI and payload
func CalculateDataChecksum(tfi byte, data []byte) byte {
	return ^(tfi + CalculateChecksum(data)) + 1
}

// CalculateLengthChecksum returns the LCS byte for a LEN byte
func CalculateLengthChecksum(length byte) byte {
	return ^length + 1
}

// BuildFrame wraps data in a port frame. Payloads that do not fit a normal
// frame are sent as extended frames.
func BuildFrame(tfi byte, data []byte) ([]byte, error) {
	dataLen := 1 + len(data) // TFI + data
	if dataLen > MaxExtendedDataLength {
		return nil, fmt.Errorf("frame payload %d bytes: %w", len(data), ErrBufferTooSmall)
	}

	frm := make([]byte, 0, dataLen+10)
	frm = append(frm, Preamble, StartCode1, StartCode2)
	if dataLen <= MaxNormalDataLength {
		frm = append(frm, byte(dataLen), CalculateLengthChecksum(byte(dataLen)))
	} else {
		lenM, lenL := byte(dataLen>>8), byte(dataLen)
		frm = append(frm, 0xFF, 0xFF, lenM, lenL, ^(lenM+lenL)+1)
	}
	frm = append(frm, tfi)
	frm = append(frm, data...)
	frm = append(frm, CalculateDataChecksum(tfi, data), Postamble)
	return frm, nil
}

// ParseFrame extracts the first complete frame from buf. It returns the TFI,
// the payload (a copy), and the number of bytes of buf consumed including any
// garbage preceding the start code. ACK frames yield a nil payload with TFI 0
// and NACK frames yield ErrNack.
func ParseFrame(buf []byte) (tfi byte, data []byte, consumed int, err error) {
	start := bytes.Index(buf, []byte{StartCode1, StartCode2})
	if start < 0 {
		return 0, nil, 0, ErrNoStartCode
	}
	off := start + 2
	if len(buf)-off < 2 {
		return 0, nil, 0, ErrIncomplete
	}

	if buf[off] == 0x00 && buf[off+1] == 0xFF {
		// ACK
		return 0, nil, off + 3, nil
	}
	if buf[off] == 0xFF && buf[off+1] == 0x00 {
		return 0, nil, off + 3, ErrNack
	}

	var dataLen int
	if buf[off] == 0xFF && buf[off+1] == 0xFF {
		if len(buf)-off < 5 {
			return 0, nil, 0, ErrIncomplete
		}
		if ValidateChecksum(buf[off+2 : off+5]) {
			return 0, nil, off + 5, fmt.Errorf("extended length: %w", ErrChecksumMismatch)
		}
		dataLen = int(buf[off+2])<<8 | int(buf[off+3])
		off += 5
	} else {
		if ValidateChecksum(buf[off : off+2]) {
			return 0, nil, off + 2, fmt.Errorf("length: %w", ErrChecksumMismatch)
		}
		dataLen = int(buf[off])
		off += 2
	}
	if dataLen == 0 {
		return 0, nil, off, fmt.Errorf("empty frame: %w", ErrInvalidFormat)
	}

	// TFI + data + DCS
	if len(buf)-off < dataLen+1 {
		return 0, nil, 0, ErrIncomplete
	}
	if ValidateChecksum(buf[off : off+dataLen+1]) {
		return 0, nil, off + dataLen + 1, fmt.Errorf("data: %w", ErrChecksumMismatch)
	}

	tfi = buf[off]
	data = append([]byte(nil), buf[off+1:off+dataLen]...)
	consumed = off + dataLen + 1
	if consumed < len(buf) && buf[consumed] == Postamble {
		consumed++
	}
	return tfi, data, consumed, nil
}
