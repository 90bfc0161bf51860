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
	"errors"
	"fmt"
)

// Codec errors
var (
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrInvalidFormat  = errors.New("invalid format")
)

// Header is the fixed two-byte LLCP PDU header.
//
//	byte 0: DSAP(6) | PTYPE(high 2)
//	byte 1: PTYPE(low 2) | SSAP(6)
type Header struct {
	DSAP  byte
	SSAP  byte
	PType byte
}

// Sequence is the optional N(S)/N(R) byte carried by numbered PDUs.
type Sequence struct {
	NS byte
	NR byte
}

// String implements fmt.Stringer
func (h Header) String() string {
	return fmt.Sprintf("dsap=%02X ssap=%02X ptype=%s", h.DSAP, h.SSAP, PTypeName(h.PType))
}

// PutHeader writes h at buf[offset:] and returns the number of bytes written.
func PutHeader(buf []byte, offset int, h Header) (int, error) {
	if offset < 0 || len(buf)-offset < HeaderSize {
		return 0, fmt.Errorf("header at offset %d: %w", offset, ErrBufferTooSmall)
	}
	buf[offset] = (h.DSAP&SAPMax)<<2 | (h.PType&0x0F)>>2
	buf[offset+1] = (h.PType&0x03)<<6 | h.SSAP&SAPMax
	return HeaderSize, nil
}

// ParseHeader reads a header from buf[offset:].
func ParseHeader(buf []byte, offset int) (Header, error) {
	if offset < 0 || len(buf)-offset < HeaderSize {
		return Header{}, fmt.Errorf("header at offset %d: %w", offset, ErrInvalidFormat)
	}
	return Header{
		DSAP:  buf[offset] >> 2,
		SSAP:  buf[offset+1] & SAPMax,
		PType: (buf[offset]&0x03)<<2 | buf[offset+1]>>6,
	}, nil
}

// PutSequence writes s at buf[offset:] and returns the number of bytes written.
func PutSequence(buf []byte, offset int, s Sequence) (int, error) {
	if offset < 0 || len(buf)-offset < SequenceSize {
		return 0, fmt.Errorf("sequence at offset %d: %w", offset, ErrBufferTooSmall)
	}
	buf[offset] = (s.NS&0x0F)<<4 | s.NR&0x0F
	return SequenceSize, nil
}

// ParseSequence reads a sequence byte from buf[offset:].
func ParseSequence(buf []byte, offset int) (Sequence, error) {
	if offset < 0 || len(buf)-offset < SequenceSize {
		return Sequence{}, fmt.Errorf("sequence at offset %d: %w", offset, ErrInvalidFormat)
	}
	return Sequence{NS: buf[offset] >> 4, NR: buf[offset] & 0x0F}, nil
}

// HasSequence reports whether PDUs of the given type carry a sequence field.
func HasSequence(ptype byte) bool {
	switch ptype {
	case PTypeI, PTypeRR, PTypeRNR:
		return true
	default:
		return false
	}
}

// PTypeName returns a short mnemonic for a packet type
func PTypeName(ptype byte) string {
	switch ptype {
	case PTypeSYMM:
		return "SYMM"
	case PTypePAX:
		return "PAX"
	case PTypeAGF:
		return "AGF"
	case PTypeUI:
		return "UI"
	case PTypeCONNECT:
		return "CONNECT"
	case PTypeDISC:
		return "DISC"
	case PTypeCC:
		return "CC"
	case PTypeDM:
		return "DM"
	case PTypeFRMR:
		return "FRMR"
	case PTypeSNL:
		return "SNL"
	case PTypeI:
		return "I"
	case PTypeRR:
		return "RR"
	case PTypeRNR:
		return "RNR"
	default:
		return fmt.Sprintf("0x%X", ptype)
	}
}
