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

package mac

import (
	"bytes"
	"fmt"

	llcp "github.com/ZaparooProject/go-llcp"
)

// Magic is the LLCP magic number opening the ATR general bytes
var Magic = []byte{0x46, 0x66, 0x6D}

// GeneralBytes builds the ATR general bytes announcing LLCP with params
func GeneralBytes(params llcp.LinkParams, version byte) ([]byte, error) {
	buf := make([]byte, len(Magic)+llcp.MaxParamsTLVLength)
	copy(buf, Magic)
	n, err := llcp.EncodeLinkParams(buf[len(Magic):], params, version)
	if err != nil {
		return nil, fmt.Errorf("general bytes: %w", err)
	}
	return buf[:len(Magic)+n], nil
}

// ParseGeneralBytes checks the LLCP magic and returns the parameter block
// following it, which may be empty
func ParseGeneralBytes(gb []byte) ([]byte, error) {
	if !bytes.HasPrefix(gb, Magic) {
		return nil, fmt.Errorf("general bytes % X: LLCP magic missing: %w", gb, llcp.ErrFailed)
	}
	return gb[len(Magic):], nil
}
