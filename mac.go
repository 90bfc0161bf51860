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

// Role is the side of the underlying MAC link the local device plays
type Role int

const (
	// RoleInitiator sends first: it owns the first send turn and opens PAX
	RoleInitiator Role = iota
	// RoleTarget answers
	RoleTarget
)

// String implements fmt.Stringer
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleTarget:
		return "target"
	default:
		return "unknown"
	}
}

// LinkStatus is reported by the MAC layer and forwarded to the upper layer
type LinkStatus int

const (
	LinkActivated LinkStatus = iota + 1
	LinkDeactivated
)

// String implements fmt.Stringer
func (s LinkStatus) String() string {
	switch s {
	case LinkActivated:
		return "activated"
	case LinkDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

// RemoteDevice describes the peer found by the NFC controller. GeneralBytes
// holds the general bytes of the ATR_REQ/ATR_RES exchanged during NFC-DEP
// activation.
type RemoteDevice struct {
	ID           []byte
	GeneralBytes []byte
}

// MAC link callbacks
type (
	// MACLinkStatusFunc reports MAC link activation or deactivation. params is
	// the parameter TLV block obtained during MAC activation, or nil when the
	// parameters must be exchanged with PAX.
	MACLinkStatusFunc func(status LinkStatus, params []byte, role Role)
	// MACSendFunc reports completion of a MAC send
	MACSendFunc func(err error)
	// MACReceiveFunc reports a received frame. frame aliases the buffer
	// passed to Receive.
	MACReceiveFunc func(frame []byte, err error)
)

// MAC is the MAC mapping layer that moves raw LLCP frames over the
// underlying NFC link.
//
// Implementations must invoke callbacks asynchronously, never from inside the
// call that registered them. At most one Send and one Receive are
// outstanding at a time. Calls that start asynchronous work return nil or
// ErrPending.
type MAC interface {
	// Reset prepares the MAC and registers the link status callback
	Reset(status MACLinkStatusFunc) error

	// ChkLlcp checks whether the remote device supports LLCP
	ChkLlcp(remote *RemoteDevice, cb CheckFunc) error

	// Activate starts the MAC activation. Completion is reported through
	// the link status callback.
	Activate() error

	// Deactivate tears the MAC link down
	Deactivate() error

	// Send transmits one raw frame
	Send(frame []byte, cb MACSendFunc) error

	// Receive arms reception of one frame into buf
	Receive(buf []byte, cb MACReceiveFunc) error
}

// Upper layer callbacks
type (
	// LinkStatusFunc is notified when the LLCP link comes up or goes down
	LinkStatusFunc func(status LinkStatus)
	// CheckFunc reports the result of ChkLlcp
	CheckFunc func(err error)
	// SendFunc reports the fate of a frame accepted by Send
	SendFunc func(err error)
	// RecvFunc delivers one packet addressed to a transport SAP. The
	// packet is owned by the callee.
	RecvFunc func(packet []byte, err error)
)
