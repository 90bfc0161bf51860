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

/*
Package llcp implements the link layer of the NFC Logical Link Control
Protocol: link activation with parameter exchange and version negotiation,
the symmetry procedure that hands the send turn back and forth between the
two devices, and the dispatch of frames between link management and the
transport service access points above.

The package does not talk to hardware. A MAC mapping moves raw frames over
the underlying NFC-DEP link; package mac provides one over any frame port
and packages transport/uart and transport/i2c provide the ports.

Features:
  - Parameter TLV encoding and decoding (VERSION, MIUX, WKS, LTO, OPT)
  - Version negotiation and MIU clamping to the transmit buffer
  - Symmetry timer driven turn taking with SYMM keep-alives
  - PAX parameter exchange when the MAC supplies no parameters
  - Aggregated frame (AGF) de-aggregation
  - Deferred send, DISC and FRMR replayed on the next send turn
  - Link statistics, exported by package metrics

Basic Usage:

	import (
	    llcp "github.com/ZaparooProject/go-llcp"
	    "github.com/ZaparooProject/go-llcp/mac"
	    "github.com/ZaparooProject/go-llcp/transport/uart"
	)

	port, err := uart.New("/dev/ttyUSB0", uart.DefaultConfig())
	if err != nil {
	    log.Fatal(err)
	}
	dep := mac.NewDEP(port, mac.DefaultConfig())
	defer dep.Close()

	link, err := llcp.New()
	if err != nil {
	    log.Fatal(err)
	}
	rx := make([]byte, llcp.MIUMax+3)
	tx := make([]byte, llcp.MIUMax+3)
	err = link.Reset(dep, llcp.DefaultLinkParams(), rx, tx, func(s llcp.LinkStatus) {
	    fmt.Println("link", s)
	})

	// ChkLlcp, then Activate once the check succeeded
	_ = link.ChkLlcp(&llcp.RemoteDevice{GeneralBytes: gb}, func(err error) {
	    if err == nil {
	        _ = link.Activate()
	    }
	})

Package session runs this cycle for you and brings the link up again after
it is lost.

Asynchronous Operations:

Operations that complete later return ErrPending and report through their
callback. Callbacks never run while the link lock is held, so they may call
back into the Link.

	if err := link.Send(h, nil, info, cb); !llcp.IsPending(err) {
	    // rejected synchronously
	}

Error Handling:

Errors wrap sentinel values that can be inspected:

	if errors.Is(err, llcp.ErrIncompatibleVersion) {
	    // the peer speaks another major version
	}

Thread Safety:

All Link methods are safe for concurrent use.
*/
package llcp
