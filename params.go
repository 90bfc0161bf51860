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
	"encoding/binary"
	"fmt"

	"github.com/ZaparooProject/go-llcp/internal/frame"
	"go.uber.org/zap"
)

// Protocol version announced by default (major 1, minor 1)
const (
	Version          byte = 0x11
	versionMajorMask byte = 0xF0
	versionMinorMask byte = 0x0F
)

// Link parameter defaults and limits
const (
	MIUDefault    uint16 = 128
	MIUXMask      uint16 = 0x07FF
	MIUMax               = MIUDefault + MIUXMask
	WKSDefault    uint16 = 0x0001
	WKSMask       uint16 = 0x0001 // link management is always advertised
	LTODefault    uint8  = 10     // 100 ms
	OptionDefault uint8  = 0x00
	OptionMask    uint8  = 0x03

	// MaxParamsTLVLength is the size of a fully populated parameter block
	MaxParamsTLVLength = frame.TLVHeaderSize*5 + frame.TLVLengthVersion + frame.TLVLengthMIUX +
		frame.TLVLengthWKS + frame.TLVLengthLTO + frame.TLVLengthOPT
)

// LinkParams holds the link parameters announced by one side of the link.
type LinkParams struct {
	// MIU is the maximum information unit the side can receive
	MIU uint16
	// WKS is the well-known service bitmap
	WKS uint16
	// LTO is the link timeout in units of 10 ms
	LTO uint8
	// Option carries the link service class bits
	Option uint8
}

// DefaultLinkParams returns the parameters a peer is assumed to have when it
// does not announce them.
func DefaultLinkParams() LinkParams {
	return LinkParams{
		MIU:    MIUDefault,
		WKS:    WKSDefault,
		LTO:    LTODefault,
		Option: OptionDefault,
	}
}

// EncodeLinkParams writes the parameter TLV block for params into buf and
// returns the encoded length. VERSION and WKS are always present, MIUX, LTO
// and OPT only when they differ from their defaults.
func EncodeLinkParams(buf []byte, params LinkParams, version byte) (int, error) {
	if params.MIU < MIUDefault || params.MIU > MIUMax {
		return 0, fmt.Errorf("encode link params: MIU %d out of range: %w", params.MIU, ErrInvalidParameter)
	}

	offset := 0
	if err := frame.EncodeTLV(buf, &offset, frame.TLVVersion, []byte{version}); err != nil {
		return 0, fmt.Errorf("encode VERSION: %w", err)
	}

	if params.MIU != MIUDefault {
		var miux [frame.TLVLengthMIUX]byte
		binary.BigEndian.PutUint16(miux[:], (params.MIU-MIUDefault)&MIUXMask)
		if err := frame.EncodeTLV(buf, &offset, frame.TLVMIUX, miux[:]); err != nil {
			return 0, fmt.Errorf("encode MIUX: %w", err)
		}
	}

	var wks [frame.TLVLengthWKS]byte
	binary.BigEndian.PutUint16(wks[:], params.WKS|WKSMask)
	if err := frame.EncodeTLV(buf, &offset, frame.TLVWKS, wks[:]); err != nil {
		return 0, fmt.Errorf("encode WKS: %w", err)
	}

	if params.LTO != LTODefault {
		if err := frame.EncodeTLV(buf, &offset, frame.TLVLTO, []byte{params.LTO}); err != nil {
			return 0, fmt.Errorf("encode LTO: %w", err)
		}
	}

	if params.Option != OptionDefault {
		if err := frame.EncodeTLV(buf, &offset, frame.TLVOPT, []byte{params.Option & OptionMask}); err != nil {
			return 0, fmt.Errorf("encode OPT: %w", err)
		}
	}

	return offset, nil
}

// MarshalLinkParams is EncodeLinkParams into a freshly allocated slice
func MarshalLinkParams(params LinkParams, version byte) ([]byte, error) {
	buf := make([]byte, MaxParamsTLVLength)
	n, err := EncodeLinkParams(buf, params, version)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// DecodeLinkParams parses a parameter TLV block. Fields start at their
// defaults. Recognised TLVs with a wrong length and unknown TLVs are skipped;
// a structurally broken block or a missing VERSION fails the decode.
func DecodeLinkParams(buf []byte) (params LinkParams, version byte, err error) {
	return decodeLinkParams(buf, debugLogger())
}

func decodeLinkParams(buf []byte, log *zap.Logger) (params LinkParams, version byte, err error) {
	params = DefaultLinkParams()
	hasVersion := false

	for offset := 0; offset < len(buf); {
		typ, value, decErr := frame.DecodeTLV(buf, &offset)
		if decErr != nil {
			return LinkParams{}, 0, failed(fmt.Errorf("decode link params: %w", decErr))
		}

		switch typ {
		case frame.TLVVersion:
			if len(value) != frame.TLVLengthVersion {
				log.Debug("ignoring VERSION TLV", zap.Int("len", len(value)))
				continue
			}
			version = value[0]
			hasVersion = true
		case frame.TLVMIUX:
			if len(value) != frame.TLVLengthMIUX {
				log.Debug("ignoring MIUX TLV", zap.Int("len", len(value)))
				continue
			}
			params.MIU = MIUDefault + binary.BigEndian.Uint16(value)&MIUXMask
		case frame.TLVWKS:
			if len(value) != frame.TLVLengthWKS {
				log.Debug("ignoring WKS TLV", zap.Int("len", len(value)))
				continue
			}
			params.WKS = binary.BigEndian.Uint16(value) | WKSMask
		case frame.TLVLTO:
			if len(value) != frame.TLVLengthLTO {
				log.Debug("ignoring LTO TLV", zap.Int("len", len(value)))
				continue
			}
			params.LTO = value[0]
		case frame.TLVOPT:
			if len(value) != frame.TLVLengthOPT {
				log.Debug("ignoring OPT TLV", zap.Int("len", len(value)))
				continue
			}
			params.Option = value[0] & OptionMask
		default:
			log.Debug("ignoring unknown parameter TLV", zap.Uint8("type", typ))
		}
	}

	if !hasVersion {
		return LinkParams{}, 0, failed(fmt.Errorf("decode link params: VERSION: %w", ErrMissingMandatoryField))
	}
	return params, version, nil
}

// NegotiateVersion agrees on the version to run with a peer. With equal
// majors the lower minor wins. A peer with an older major is incompatible; a
// peer with a newer major gets our version and decides for itself.
func NegotiateVersion(local, remote byte) (byte, error) {
	localMajor, remoteMajor := local&versionMajorMask, remote&versionMajorMask
	localMinor, remoteMinor := local&versionMinorMask, remote&versionMinorMask

	switch {
	case localMajor == remoteMajor:
		return localMajor | min(localMinor, remoteMinor), nil
	case localMajor > remoteMajor:
		return 0, failed(fmt.Errorf("local %d.%d, remote %d.%d: %w",
			local>>4, localMinor, remote>>4, remoteMinor, ErrIncompatibleVersion))
	default:
		return local, nil
	}
}
