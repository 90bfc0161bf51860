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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLVRoundTrip(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, 1, 2, 17, 128, TLVMaxValueSize} {
		for _, typ := range []byte{TLVVersion, TLVMIUX, TLVOPT, 0xFF} {
			value := bytes.Repeat([]byte{byte(length)}, length)
			buf := make([]byte, TLVHeaderSize+length+4)
			offset := 4

			require.NoError(t, EncodeTLV(buf, &offset, typ, value))
			require.Equal(t, 4+TLVHeaderSize+length, offset)

			readOffset := 4
			gotType, gotValue, err := DecodeTLV(buf, &readOffset)
			require.NoError(t, err)
			assert.Equal(t, typ, gotType)
			assert.Equal(t, value, append([]byte{}, gotValue...))
			assert.Equal(t, offset, readOffset)
		}
	}
}

func TestEncodeTLVErrors(t *testing.T) {
	t.Parallel()

	offset := 0
	require.ErrorIs(t, EncodeTLV(make([]byte, 2), &offset, TLVLTO, []byte{1}), ErrBufferTooSmall)
	assert.Zero(t, offset, "offset untouched on failure")

	require.ErrorIs(t, EncodeTLV(make([]byte, 300), &offset, TLVLTO, make([]byte, 256)), ErrInvalidFormat)
	require.ErrorIs(t, EncodeTLV(make([]byte, 4), nil, TLVLTO, nil), ErrInvalidFormat)
}

func TestDecodeTLVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		buf    []byte
		offset int
	}{
		{name: "empty", buf: nil},
		{name: "truncated header", buf: []byte{0x01}},
		{name: "length overruns", buf: []byte{0x01, 0x02, 0x11}},
		{name: "offset past end", buf: []byte{0x01, 0x01, 0x11}, offset: 3},
		{name: "negative offset", buf: []byte{0x01, 0x01, 0x11}, offset: -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offset := tt.offset
			_, _, err := DecodeTLV(tt.buf, &offset)
			require.ErrorIs(t, err, ErrInvalidFormat)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestDecodeTLVAliasesInput(t *testing.T) {
	t.Parallel()

	buf := []byte{TLVLTO, 0x01, 0x20}
	offset := 0
	_, value, err := DecodeTLV(buf, &offset)
	require.NoError(t, err)

	buf[2] = 0x30
	assert.Equal(t, byte(0x30), value[0])
	assert.Equal(t, 1, cap(value), "value cannot grow into the next record")
}

func TestSplitAggregated(t *testing.T) {
	t.Parallel()

	symm := []byte{0x00, 0x00}
	ui := []byte{0x40, 0xE0, 'h', 'i'}

	info := []byte{0x00, 0x02}
	info = append(info, symm...)
	info = append(info, 0x00, 0x04)
	info = append(info, ui...)
	info = append(info, 0x00, 0x00)

	pdus, err := SplitAggregated(info)
	require.NoError(t, err)
	require.Len(t, pdus, 3)
	assert.Equal(t, symm, pdus[0])
	assert.Equal(t, ui, pdus[1])
	assert.Empty(t, pdus[2])

	pdus, err = SplitAggregated(nil)
	require.NoError(t, err)
	assert.Empty(t, pdus)
}

func TestSplitAggregatedValidatesFirst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info []byte
	}{
		{name: "truncated length", info: []byte{0x00, 0x02, 0x00, 0x00, 0x00}},
		{name: "length overruns", info: []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0x09, 0x01}},
		{name: "single overrun", info: []byte{0x01, 0x00}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pdus, err := SplitAggregated(tt.info)
			require.ErrorIs(t, err, ErrInvalidFormat)
			assert.Nil(t, pdus)
		})
	}
}
