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
	"fmt"

	"github.com/ZaparooProject/go-llcp/internal/frame"
	"go.uber.org/zap"
)

// Send transmits one PDU. On our turn it goes out immediately, otherwise it
// is held until the peer hands the turn over. Only one Send may be
// outstanding; cb reports its fate and ErrPending is returned on accept.
func (l *Link) Send(h Header, seq *Sequence, info []byte, cb SendFunc) error {
	if cb == nil || h.DSAP > frame.SAPMax || h.SSAP > frame.SAPMax || h.PType > 0x0F {
		return ErrInvalidParameter
	}
	if frame.HasSequence(h.PType) != (seq != nil) {
		return fmt.Errorf("sequence field for %s: %w", frame.PTypeName(h.PType), ErrInvalidParameter)
	}

	l.lock()
	defer l.unlock()

	if l.sendCB != nil {
		return newLinkError("send", l.state, ErrRejected)
	}
	if !l.state.operational() {
		return newLinkError("send", l.state, ErrInvalidState)
	}
	if len(info) > int(l.remote.MIU) {
		return newLinkError("send", l.state,
			fmt.Errorf("info %d bytes exceeds remote MIU %d: %w", len(info), l.remote.MIU, ErrInvalidParameter))
	}

	l.sendCB = cb

	if l.state == StateOperationSend && !l.txInFlight {
		if err := l.internalSend(h, seq, info); err != nil {
			l.sendCB = nil
			_ = l.internalDeactivate()
			return newLinkError("send", l.state, err)
		}
		return ErrPending
	}

	buf := frame.GetBuffer(len(info))
	n := copy(buf, info)
	l.pending = &pendingSend{header: h, info: buf[:n]}
	if seq != nil {
		s := *seq
		l.pending.seq = &s
	}
	l.counters.deferredSends.Add(1)
	if l.state == StateOperationSend {
		l.turnDeferred = true
	}
	l.log.Debug("send deferred", zap.Stringer("header", h), zap.Stringer("state", l.state))
	return ErrPending
}

// internalSend transmits a frame as part of the symmetry procedure
func (l *Link) internalSend(h frame.Header, seq *frame.Sequence, info []byte) error {
	l.resetLTO()
	return l.transmit(h, seq, info)
}

// transmit serialises a frame into the transmit buffer and hands it to the
// MAC. The buffer is busy until the MAC reports completion.
func (l *Link) transmit(h frame.Header, seq *frame.Sequence, info []byte) error {
	n, err := putPDU(l.txBuf, h, seq, info)
	if err != nil {
		return failed(fmt.Errorf("serialise %s: %w", frame.PTypeName(h.PType), err))
	}

	l.log.Debug("send", zap.Stringer("header", h), zap.Int("len", n))
	l.txInFlight = true
	l.counters.countSent(h.PType)

	if err := l.mac.Send(l.txBuf[:n], l.onSendComplete); !accepted(err) {
		l.txInFlight = false
		return failed(fmt.Errorf("MAC send: %w", err))
	}
	return nil
}

// onSendComplete is the MAC completion of transmit
func (l *Link) onSendComplete(err error) {
	l.lock()
	defer l.unlock()

	l.txInFlight = false

	if l.pending == nil && l.sendCB != nil {
		cb := l.sendCB
		l.sendCB = nil
		if err != nil {
			err = failed(err)
		}
		l.queue(func() { cb(err) })
	}

	switch {
	case err != nil:
		l.log.Debug("MAC send failed", zap.Error(err))
		_ = l.internalDeactivate()
	case l.closeOnSent:
		l.closeOnSent = false
		_ = l.internalDeactivate()
	case l.turnDeferred && l.state == StateOperationSend:
		l.turnDeferred = false
		l.handlePendingSend()
	}
}

// handlePendingSend uses the send turn for one frame: a deferred DISC, then
// a FRMR, then a deferred data frame, and a bare SYMM when there is nothing
// to say. It reports whether a frame was handed to the MAC.
func (l *Link) handlePendingSend() bool {
	if l.state != StateOperationSend {
		return false
	}
	if l.txInFlight {
		l.turnDeferred = true
		return false
	}

	var err error
	switch {
	case l.discPending:
		l.discPending = false
		err = l.internalSend(frame.Header{DSAP: frame.SAPLink, SSAP: frame.SAPLink, PType: frame.PTypeDISC}, nil, nil)
		if err == nil {
			l.closeOnSent = true
		}
	case l.frmrPending:
		l.frmrPending = false
		err = l.internalSend(l.frmrHeader, nil, l.frmrInfo[:])
	case l.pending != nil:
		p := l.pending
		l.pending = nil
		err = l.internalSend(p.header, p.seq, p.info)
		frame.PutBuffer(p.info)
	default:
		err = l.internalSend(frame.Header{DSAP: frame.SAPLink, SSAP: frame.SAPLink, PType: frame.PTypeSYMM}, nil, nil)
	}

	if err != nil {
		l.log.Debug("send on turn failed", zap.Error(err))
		_ = l.internalDeactivate()
		return false
	}
	return true
}

// armReceive asks the MAC for the next frame
func (l *Link) armReceive() {
	if err := l.mac.Receive(l.rxBuf, l.onReceive); !accepted(err) {
		l.log.Debug("MAC receive failed", zap.Error(err))
		_ = l.internalDeactivate()
	}
}

// onReceive is the MAC completion of armReceive
func (l *Link) onReceive(pdu []byte, err error) {
	l.lock()
	defer l.unlock()

	if err != nil || l.discPending {
		if err != nil {
			l.log.Debug("MAC receive failed", zap.Error(err))
		}
		l.discPending = false
		_ = l.internalDeactivate()
		return
	}

	l.counters.framesReceived.Add(1)

	switch {
	case l.state == StatePAX:
		l.handlePAX(pdu)
	case l.state.operational():
		l.resetLTO()
		if err := l.handleIncomingPacket(pdu); err != nil {
			l.log.Debug("incoming PDU rejected", zap.Error(err))
		}
		l.handlePendingSend()
	default:
		l.log.Debug("dropping PDU", zap.Stringer("state", l.state), zap.Int("len", len(pdu)))
		l.counters.dropped.Add(1)
	}

	if l.state.active() {
		l.armReceive()
	}
}

// handleIncomingPacket dispatches one PDU to link management or to the
// transport layer
func (l *Link) handleIncomingPacket(pdu []byte) error {
	h, err := frame.ParseHeader(pdu, 0)
	if err != nil {
		l.setFRMR(frame.Header{}, frame.FRMRFlagW, 0)
		l.counters.dropped.Add(1)
		return err
	}
	l.counters.countReceived(h)
	l.log.Debug("receive", zap.Stringer("header", h), zap.Int("len", len(pdu)))

	if h.DSAP != frame.SAPLink {
		return l.deliver(pdu)
	}

	switch h.PType {
	case frame.PTypeSYMM:
	case frame.PTypeAGF:
		return l.handleAggregatedPacket(pdu[frame.HeaderSize:])
	case frame.PTypeDISC:
		return l.internalDeactivate()
	case frame.PTypeFRMR:
		l.log.Debug("peer rejected a frame", zap.Binary("info", pdu[frame.HeaderSize:]))
	case frame.PTypePAX:
		l.log.Debug("ignoring PAX on an operational link")
	default:
		var seq byte
		if len(pdu) > frame.HeaderSize && frame.HasSequence(h.PType) {
			seq = pdu[frame.HeaderSize]
		}
		l.setFRMR(h, frame.FRMRFlagW|h.PType, seq)
	}
	return nil
}

// deliver hands a transport PDU to the registered receiver
func (l *Link) deliver(pdu []byte) error {
	cb := l.recvCB
	if cb == nil {
		l.log.Debug("no receiver, dropping PDU")
		l.counters.dropped.Add(1)
		return nil
	}
	l.recvCB = nil
	packet := make([]byte, len(pdu))
	copy(packet, pdu)
	l.queue(func() { cb(packet, nil) })
	return nil
}

// handleAggregatedPacket validates every length of an AGF before handing its
// PDUs one by one to handleIncomingPacket
func (l *Link) handleAggregatedPacket(info []byte) error {
	pdus, err := frame.SplitAggregated(info)
	if err != nil {
		l.counters.dropped.Add(1)
		return fmt.Errorf("aggregated frame: %w", err)
	}

	for i, pdu := range pdus {
		if len(pdu) < frame.HeaderSize {
			l.log.Debug("skipping short aggregated PDU", zap.Int("index", i), zap.Int("len", len(pdu)))
			continue
		}
		if err := l.handleIncomingPacket(pdu); err != nil {
			l.log.Debug("aggregated PDU rejected", zap.Int("index", i), zap.Error(err))
		}
		if !l.state.operational() {
			break
		}
	}
	return nil
}

// setFRMR records a frame reject for the PDU h, sent on the next turn. No
// FRMR answers a FRMR.
func (l *Link) setFRMR(h frame.Header, flags, seq byte) {
	if h.PType == frame.PTypeFRMR && h.DSAP == frame.SAPLink {
		return
	}
	l.frmrHeader = frame.Header{DSAP: h.SSAP, SSAP: h.DSAP, PType: frame.PTypeFRMR}
	l.frmrInfo = [frame.FRMRInfoSize]byte{flags, seq, 0, 0}
	l.frmrPending = true
}
