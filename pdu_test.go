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

package llcp

import (
	"testing"

	testutil "github.com/ZaparooProject/go-llcp/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPDU(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    Header
		seq  *Sequence
		info []byte
		want []byte
	}{
		{name: "SYMM", h: Header{PType: PTypeSYMM}, want: []byte{0x00, 0x00}},
		{name: "DISC", h: Header{PType: PTypeDISC}, want: []byte{0x01, 0x40}},
		{name: "CONNECT to SDP", h: Header{DSAP: SAPSDP, SSAP: 0x20, PType: PTypeCONNECT}, want: []byte{0x05, 0x20}},
		{
			name: "I with sequence",
			h:    Header{DSAP: 0x3F, SSAP: 0x3F, PType: PTypeI},
			seq:  &Sequence{NS: 0x0F, NR: 0x01},
			info: []byte{0xAA},
			want: []byte{0xFF, 0x3F, 0xF1, 0xAA},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := MarshalPDU(tt.h, tt.seq, tt.info)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			h, seq, info, err := ParsePDU(got)
			require.NoError(t, err)
			assert.Equal(t, tt.h, h)
			assert.Equal(t, tt.seq, seq)
			assert.Equal(t, len(tt.info), len(info))
		})
	}
}

func TestParsePDUErrors(t *testing.T) {
	t.Parallel()

	_, _, _, err := ParsePDU([]byte{0x00})
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, _, _, err = ParsePDU(testutil.BuildPDU(0x10, 0x10, PTypeRR))
	require.ErrorIs(t, err, ErrInvalidFormat, "RR without its sequence byte")
}

func TestPutPDUBufferTooSmall(t *testing.T) {
	t.Parallel()

	_, err := putPDU(make([]byte, 3), Header{PType: PTypeUI}, nil, []byte{1, 2})
	require.ErrorIs(t, err, ErrBufferTooSmall)
}
