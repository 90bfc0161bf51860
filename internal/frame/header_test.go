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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	for dsap := byte(0); dsap <= SAPMax; dsap++ {
		for ptype := byte(0); ptype <= 0x0F; ptype++ {
			for _, ssap := range []byte{0x00, 0x01, 0x20, SAPMax} {
				h := Header{DSAP: dsap, SSAP: ssap, PType: ptype}
				buf := make([]byte, HeaderSize)
				n, err := PutHeader(buf, 0, h)
				require.NoError(t, err)
				require.Equal(t, HeaderSize, n)

				got, err := ParseHeader(buf, 0)
				require.NoError(t, err)
				require.Equal(t, h, got)
			}
		}
	}
}

func TestHeaderLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    Header
		want []byte
	}{
		{name: "SYMM", h: Header{PType: PTypeSYMM}, want: []byte{0x00, 0x00}},
		{name: "PAX", h: Header{PType: PTypePAX}, want: []byte{0x00, 0x40}},
		{name: "AGF", h: Header{PType: PTypeAGF}, want: []byte{0x00, 0x80}},
		{name: "DISC", h: Header{PType: PTypeDISC}, want: []byte{0x01, 0x40}},
		{name: "FRMR", h: Header{PType: PTypeFRMR}, want: []byte{0x02, 0x00}},
		{name: "UI", h: Header{DSAP: 0x10, SSAP: 0x20, PType: PTypeUI}, want: []byte{0x40, 0xE0}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := make([]byte, HeaderSize)
			_, err := PutHeader(buf, 0, tt.h)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf)
		})
	}
}

func TestHeaderErrors(t *testing.T) {
	t.Parallel()

	_, err := PutHeader(make([]byte, 3), 2, Header{})
	require.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = ParseHeader([]byte{0x00}, 0)
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseHeader([]byte{0x00, 0x00}, -1)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSequence(t *testing.T) {
	t.Parallel()

	buf := []byte{0x00, 0x00, 0x00}
	n, err := PutSequence(buf, 2, Sequence{NS: 0x0A, NR: 0x05})
	require.NoError(t, err)
	assert.Equal(t, SequenceSize, n)
	assert.Equal(t, byte(0xA5), buf[2])

	seq, err := ParseSequence(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, Sequence{NS: 0x0A, NR: 0x05}, seq)

	_, err = ParseSequence(buf, 3)
	require.ErrorIs(t, err, ErrInvalidFormat)
	_, err = PutSequence(buf, 3, seq)
	require.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestHasSequence(t *testing.T) {
	t.Parallel()

	for ptype := byte(0); ptype <= 0x0F; ptype++ {
		want := ptype == PTypeI || ptype == PTypeRR || ptype == PTypeRNR
		assert.Equal(t, want, HasSequence(ptype), PTypeName(ptype))
	}
}

func TestPTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SYMM", PTypeName(PTypeSYMM))
	assert.Equal(t, "RNR", PTypeName(PTypeRNR))
	assert.Equal(t, "0xF", PTypeName(0x0F))
	assert.Equal(t, "dsap=01 ssap=20 ptype=CONNECT", Header{DSAP: 1, SSAP: 0x20, PType: PTypeCONNECT}.String())
}
