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
	"sync/atomic"

	"github.com/ZaparooProject/go-llcp/internal/frame"
)

// Stats is a snapshot of link counters. Counters accumulate across resets.
type Stats struct {
	Session        string // id of the current or last MAC activation
	FramesSent     uint64
	FramesReceived uint64
	SymmSent       uint64
	SymmReceived   uint64
	PaxSent        uint64
	PaxReceived    uint64
	AgfReceived    uint64
	DiscSent       uint64
	DiscReceived   uint64
	FrmrSent       uint64
	FrmrReceived   uint64
	DeferredSends  uint64
	Activations    uint64
	Deactivations  uint64
	LTOExpirations uint64
	Dropped        uint64 // frames ignored in the current state or malformed
}

// linkCounters are updated under the link lock and read without it
type linkCounters struct {
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	symmSent       atomic.Uint64
	symmReceived   atomic.Uint64
	paxSent        atomic.Uint64
	paxReceived    atomic.Uint64
	agfReceived    atomic.Uint64
	discSent       atomic.Uint64
	discReceived   atomic.Uint64
	frmrSent       atomic.Uint64
	frmrReceived   atomic.Uint64
	deferredSends  atomic.Uint64
	activations    atomic.Uint64
	deactivations  atomic.Uint64
	ltoExpirations atomic.Uint64
	dropped        atomic.Uint64
}

func (c *linkCounters) countSent(ptype byte) {
	c.framesSent.Add(1)
	switch ptype {
	case frame.PTypeSYMM:
		c.symmSent.Add(1)
	case frame.PTypePAX:
		c.paxSent.Add(1)
	case frame.PTypeDISC:
		c.discSent.Add(1)
	case frame.PTypeFRMR:
		c.frmrSent.Add(1)
	}
}

// countReceived counts link SAP PDUs by type; transport PDUs only count as frames
func (c *linkCounters) countReceived(h frame.Header) {
	if h.DSAP != frame.SAPLink {
		return
	}
	switch h.PType {
	case frame.PTypeSYMM:
		c.symmReceived.Add(1)
	case frame.PTypePAX:
		c.paxReceived.Add(1)
	case frame.PTypeAGF:
		c.agfReceived.Add(1)
	case frame.PTypeDISC:
		c.discReceived.Add(1)
	case frame.PTypeFRMR:
		c.frmrReceived.Add(1)
	}
}

// GetStats returns the current link counters
func (l *Link) GetStats() Stats {
	l.mu.Lock()
	session := l.session
	l.mu.Unlock()

	c := &l.counters
	return Stats{
		Session:        session,
		FramesSent:     c.framesSent.Load(),
		FramesReceived: c.framesReceived.Load(),
		SymmSent:       c.symmSent.Load(),
		SymmReceived:   c.symmReceived.Load(),
		PaxSent:        c.paxSent.Load(),
		PaxReceived:    c.paxReceived.Load(),
		AgfReceived:    c.agfReceived.Load(),
		DiscSent:       c.discSent.Load(),
		DiscReceived:   c.discReceived.Load(),
		FrmrSent:       c.frmrSent.Load(),
		FrmrReceived:   c.frmrReceived.Load(),
		DeferredSends:  c.deferredSends.Load(),
		Activations:    c.activations.Load(),
		Deactivations:  c.deactivations.Load(),
		LTOExpirations: c.ltoExpirations.Load(),
		Dropped:        c.dropped.Load(),
	}
}
