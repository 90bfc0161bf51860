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

// Package testing provides PDU builders and a simulated LLCP peer for tests.
package testing

import (
	"encoding/binary"

	"github.com/ZaparooProject/go-llcp/internal/frame"
)

// BuildPDU creates an unnumbered PDU
func BuildPDU(dsap, ssap, ptype byte, info ...byte) []byte {
	pdu := make([]byte, frame.HeaderSize, frame.HeaderSize+len(info))
	_, _ = frame.PutHeader(pdu, 0, frame.Header{DSAP: dsap, SSAP: ssap, PType: ptype})
	return append(pdu, info...)
}

// BuildSYMM creates a symmetry PDU
func BuildSYMM() []byte {
	return BuildPDU(frame.SAPLink, frame.SAPLink, frame.PTypeSYMM)
}

// BuildDISC creates a link disconnect PDU
func BuildDISC() []byte {
	return BuildPDU(frame.SAPLink, frame.SAPLink, frame.PTypeDISC)
}

// BuildPAX creates a parameter exchange PDU carrying tlv
func BuildPAX(tlv []byte) []byte {
	return BuildPDU(frame.SAPLink, frame.SAPLink, frame.PTypePAX, tlv...)
}

// BuildUI creates an unnumbered information PDU
func BuildUI(dsap, ssap byte, info []byte) []byte {
	return BuildPDU(dsap, ssap, frame.PTypeUI, info...)
}

// BuildI creates an information PDU with its sequence byte
func BuildI(dsap, ssap, ns, nr byte, info []byte) []byte {
	pdu := BuildPDU(dsap, ssap, frame.PTypeI, (ns&0x0F)<<4|nr&0x0F)
	return append(pdu, info...)
}

// BuildAGF aggregates pdus into one AGF PDU
func BuildAGF(pdus ...[]byte) []byte {
	agf := BuildPDU(frame.SAPLink, frame.SAPLink, frame.PTypeAGF)
	for _, pdu := range pdus {
		agf = binary.BigEndian.AppendUint16(agf, uint16(len(pdu)))
		agf = append(agf, pdu...)
	}
	return agf
}

// BuildTLV creates one parameter record
func BuildTLV(typ byte, value ...byte) []byte {
	return append([]byte{typ, byte(len(value))}, value...)
}

// BuildParams creates a parameter block with VERSION and the given extra
// records
func BuildParams(version byte, records ...[]byte) []byte {
	block := BuildTLV(frame.TLVVersion, version)
	for _, r := range records {
		block = append(block, r...)
	}
	return block
}

// LLCPMagic prefixes the general bytes of an LLCP capable peer
var LLCPMagic = []byte{0x46, 0x66, 0x6D}

// BuildGeneralBytes creates ATR general bytes announcing LLCP with params
func BuildGeneralBytes(params []byte) []byte {
	gb := append([]byte(nil), LLCPMagic...)
	return append(gb, params...)
}

// Common identifiers for testing
var (
	// TestPeerID is a sample NFCID3 of a peer device
	TestPeerID = []byte{0x01, 0xFE, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10, 0x11}

	// TestVersion10 and TestVersion11 are protocol versions 1.0 and 1.1
	TestVersion10 byte = 0x10
	TestVersion11 byte = 0x11
)
