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

package testing

import (
	"sync"

	"github.com/ZaparooProject/go-llcp/internal/frame"
)

// VirtualPeer is a simulated remote LLCP device. It answers every PDU the
// way a passive peer with nothing to say would and records what it got.
type VirtualPeer struct {
	Params   []byte // parameter block sent in PAX replies
	received [][]byte
	outbox   [][]byte
	mu       sync.Mutex
	closed   bool
}

// NewVirtualPeer creates a peer announcing version with default parameters
func NewVirtualPeer(version byte) *VirtualPeer {
	return &VirtualPeer{Params: BuildParams(version)}
}

// Queue schedules pdu as the answer to the next PDU received
func (v *VirtualPeer) Queue(pdu []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.outbox = append(v.outbox, append([]byte(nil), pdu...))
}

// Answer records pdu and returns the reply, or nil when the peer stays quiet
func (v *VirtualPeer) Answer(pdu []byte) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.received = append(v.received, append([]byte(nil), pdu...))
	if v.closed {
		return nil
	}

	h, err := frame.ParseHeader(pdu, 0)
	if err != nil {
		return nil
	}
	if h.DSAP == frame.SAPLink {
		switch h.PType {
		case frame.PTypePAX:
			return BuildPAX(v.Params)
		case frame.PTypeDISC:
			v.closed = true
			return nil
		}
	}

	if len(v.outbox) > 0 {
		next := v.outbox[0]
		v.outbox = v.outbox[1:]
		return next
	}
	return BuildSYMM()
}

// Received returns copies of the PDUs seen so far
func (v *VirtualPeer) Received() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([][]byte, len(v.received))
	copy(out, v.received)
	return out
}

// ReceivedType returns the PDUs of the given type addressed to dsap
func (v *VirtualPeer) ReceivedType(dsap, ptype byte) [][]byte {
	var out [][]byte
	for _, pdu := range v.Received() {
		h, err := frame.ParseHeader(pdu, 0)
		if err == nil && h.DSAP == dsap && h.PType == ptype {
			out = append(out, pdu)
		}
	}
	return out
}

// Closed reports whether a DISC was received
func (v *VirtualPeer) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
