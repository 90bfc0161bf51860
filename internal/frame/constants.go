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

// Package frame provides PDU manipulation and protocol constants for LLCP
// and for the byte framing used by the physical ports.
package frame

// Packet types (PTYPE field, 4 bits)
const (
	PTypeSYMM    = 0x00 // Symmetry
	PTypePAX     = 0x01 // Parameter exchange
	PTypeAGF     = 0x02 // Aggregated frame
	PTypeUI      = 0x03 // Unnumbered information
	PTypeCONNECT = 0x04
	PTypeDISC    = 0x05 // Disconnect
	PTypeCC      = 0x06 // Connection complete
	PTypeDM      = 0x07 // Disconnected mode
	PTypeFRMR    = 0x08 // Frame reject
	PTypeSNL     = 0x09 // Service name lookup
	PTypeI       = 0x0C // Information
	PTypeRR      = 0x0D // Receive ready
	PTypeRNR     = 0x0E // Receive not ready
)

// Service access points (6 bits)
const (
	SAPLink = 0x00 // Reserved for link management
	SAPSDP  = 0x01 // Service discovery
	SAPMax  = 0x3F
)

// PDU layout sizes
const (
	HeaderSize    = 2
	SequenceSize  = 1
	MaxHeaderSize = HeaderSize + SequenceSize
	AGFLengthSize = 2
	FRMRInfoSize  = 4
)

// Parameter TLV types
const (
	TLVVersion = 0x01
	TLVMIUX    = 0x02
	TLVWKS     = 0x03
	TLVLTO     = 0x04
	TLVRW      = 0x05
	TLVSN      = 0x06
	TLVOPT     = 0x07
)

// Parameter TLV value lengths
const (
	TLVLengthVersion = 1
	TLVLengthMIUX    = 2
	TLVLengthWKS     = 2
	TLVLengthLTO     = 1
	TLVLengthOPT     = 1
	TLVHeaderSize    = 2
	TLVMaxValueSize  = 0xFF
)

// FRMR flag bits (high nibble of the first info byte)
const (
	FRMRFlagW = 0x80 // Malformed or unsupported PDU
	FRMRFlagI = 0x40 // Information field error
	FRMRFlagR = 0x20 // Receive sequence error
	FRMRFlagS = 0x10 // Send sequence error
)

// Port framing markers and control bytes
const (
	Preamble   = 0x00 // Frame preamble byte
	StartCode1 = 0x00 // Start code byte 1
	StartCode2 = 0xFF // Start code byte 2
	Postamble  = 0x00 // Frame postamble byte
	TFILLCP    = 0xDE // Frame identifier for LLCP payloads
)

// Port frame size limits
const (
	MaxNormalDataLength   = 254    // TFI + data must fit a one-byte LEN
	MaxExtendedDataLength = 0xFFFF // TFI + data in an extended frame
	MinFrameLength        = 6      // preamble + startcode + len + lcs + tfi + dcs
)

// ACK and NACK frames used for flow control on the ports
var (
	AckFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
)
