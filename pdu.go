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

import "github.com/ZaparooProject/go-llcp/internal/frame"

// Header is the DSAP/SSAP/PTYPE header of a PDU
type Header = frame.Header

// Sequence is the N(S)/N(R) byte of numbered PDUs
type Sequence = frame.Sequence

// Packet types
const (
	PTypeSYMM    byte = frame.PTypeSYMM
	PTypePAX     byte = frame.PTypePAX
	PTypeAGF     byte = frame.PTypeAGF
	PTypeUI      byte = frame.PTypeUI
	PTypeCONNECT byte = frame.PTypeCONNECT
	PTypeDISC    byte = frame.PTypeDISC
	PTypeCC      byte = frame.PTypeCC
	PTypeDM      byte = frame.PTypeDM
	PTypeFRMR    byte = frame.PTypeFRMR
	PTypeSNL     byte = frame.PTypeSNL
	PTypeI       byte = frame.PTypeI
	PTypeRR      byte = frame.PTypeRR
	PTypeRNR     byte = frame.PTypeRNR
)

// Reserved service access points
const (
	SAPLink byte = frame.SAPLink
	SAPSDP  byte = frame.SAPSDP
	SAPMax  byte = frame.SAPMax
)

// MarshalPDU serialises a PDU into a new slice
func MarshalPDU(h Header, seq *Sequence, info []byte) ([]byte, error) {
	size := frame.HeaderSize + len(info)
	if seq != nil {
		size += frame.SequenceSize
	}
	buf := make([]byte, size)
	n, err := putPDU(buf, h, seq, info)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ParsePDU splits a PDU into its header, sequence (for numbered types) and
// information field. info aliases pdu.
func ParsePDU(pdu []byte) (h Header, seq *Sequence, info []byte, err error) {
	h, err = frame.ParseHeader(pdu, 0)
	if err != nil {
		return Header{}, nil, nil, err
	}
	offset := frame.HeaderSize
	if frame.HasSequence(h.PType) {
		s, err := frame.ParseSequence(pdu, offset)
		if err != nil {
			return Header{}, nil, nil, err
		}
		seq = &s
		offset += frame.SequenceSize
	}
	return h, seq, pdu[offset:], nil
}

// putPDU writes header, optional sequence and info into buf
func putPDU(buf []byte, h Header, seq *Sequence, info []byte) (int, error) {
	n, err := frame.PutHeader(buf, 0, h)
	if err != nil {
		return 0, err
	}
	if seq != nil {
		m, err := frame.PutSequence(buf, n, *seq)
		if err != nil {
			return 0, err
		}
		n += m
	}
	if len(buf)-n < len(info) {
		return 0, ErrBufferTooSmall
	}
	n += copy(buf[n:], info)
	return n, nil
}
