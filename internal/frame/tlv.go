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
	"encoding/binary"
	"fmt"
)

// EncodeTLV appends a {type, length, value} record at buf[*offset:] and
// advances offset past it. Nothing is written when the record does not fit.
func EncodeTLV(buf []byte, offset *int, typ byte, value []byte) error {
	if offset == nil || *offset < 0 {
		return fmt.Errorf("encode TLV %02X: nil or negative offset: %w", typ, ErrInvalidFormat)
	}
	if len(value) > TLVMaxValueSize {
		return fmt.Errorf("encode TLV %02X: value length %d: %w", typ, len(value), ErrInvalidFormat)
	}
	if len(buf)-*offset < TLVHeaderSize+len(value) {
		return fmt.Errorf("encode TLV %02X at offset %d: %w", typ, *offset, ErrBufferTooSmall)
	}

	buf[*offset] = typ
	buf[*offset+1] = byte(len(value))
	copy(buf[*offset+TLVHeaderSize:], value)
	*offset += TLVHeaderSize + len(value)
	return nil
}

// DecodeTLV reads one record from buf[*offset:] and advances offset past it.
// The returned value aliases buf.
func DecodeTLV(buf []byte, offset *int) (typ byte, value []byte, err error) {
	if offset == nil || *offset < 0 {
		return 0, nil, fmt.Errorf("decode TLV: nil or negative offset: %w", ErrInvalidFormat)
	}
	if len(buf)-*offset < TLVHeaderSize {
		return 0, nil, fmt.Errorf("decode TLV at offset %d: truncated header: %w", *offset, ErrInvalidFormat)
	}

	typ = buf[*offset]
	length := int(buf[*offset+1])
	start := *offset + TLVHeaderSize
	if len(buf)-start < length {
		return 0, nil, fmt.Errorf("decode TLV %02X: length %d exceeds remaining %d: %w",
			typ, length, len(buf)-start, ErrInvalidFormat)
	}

	*offset = start + length
	return typ, buf[start : start+length : start+length], nil
}

// SplitAggregated validates an AGF information field as a concatenation of
// 2-byte big-endian length prefixed PDUs and returns views of each PDU.
// No PDU is returned unless the whole field is well formed.
func SplitAggregated(info []byte) ([][]byte, error) {
	count := 0
	for offset := 0; offset < len(info); {
		if len(info)-offset < AGFLengthSize {
			return nil, fmt.Errorf("AGF at offset %d: truncated length: %w", offset, ErrInvalidFormat)
		}
		length := int(binary.BigEndian.Uint16(info[offset:]))
		offset += AGFLengthSize
		if length > len(info)-offset {
			return nil, fmt.Errorf("AGF at offset %d: length %d overruns buffer: %w",
				offset-AGFLengthSize, length, ErrInvalidFormat)
		}
		offset += length
		count++
	}

	pdus := make([][]byte, 0, count)
	for offset := 0; offset < len(info); {
		length := int(binary.BigEndian.Uint16(info[offset:]))
		offset += AGFLengthSize
		pdus = append(pdus, info[offset:offset+length:offset+length])
		offset += length
	}
	return pdus, nil
}
