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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// onMACLinkStatus is registered with the MAC in Reset
func (l *Link) onMACLinkStatus(status LinkStatus, params []byte, role Role) {
	l.lock()
	defer l.unlock()

	switch status {
	case LinkActivated:
		l.onMACActivated(params, role)
	case LinkDeactivated:
		l.onMACDeactivated()
	default:
		l.log.DPanic("unexpected MAC link status", zap.Int("status", int(status)))
		panic(fmt.Sprintf("llcp: unexpected MAC link status %d", int(status)))
	}
}

func (l *Link) onMACActivated(params []byte, role Role) {
	if l.state != StateActivation {
		l.log.Debug("ignoring MAC activation", zap.Stringer("state", l.state))
		return
	}

	l.role = role
	l.version = l.cfg.version
	l.session = uuid.NewString()
	base := l.cfg.logger
	if base == nil {
		base = Logger()
	}
	l.log = base.With(zap.String("session", l.session), zap.Stringer("role", role))
	l.log.Debug("MAC link activated", zap.Int("params", len(params)))

	if len(params) == 0 {
		l.setState(StatePAX)
		l.remote.MIU = MIUDefault
		if l.role == RoleInitiator {
			if err := l.sendPAX(); err != nil {
				l.log.Debug("PAX not sent", zap.Error(err))
				_ = l.internalDeactivate()
				return
			}
		}
	} else if err := l.internalActivate(params); err != nil {
		return
	}

	l.armReceive()
}

func (l *Link) onMACDeactivated() {
	l.log.Debug("MAC link deactivated", zap.Stringer("state", l.state))

	switch {
	case l.state.active():
		l.teardown(true)
	case l.state != StateDeactivation:
		return
	}

	l.stopTimer()
	if l.symmTimer != nil {
		l.symmTimer.Delete()
		l.symmTimer = nil
	}
	l.txInFlight = false
	l.setState(StateResetInit)
}

// internalActivate negotiates with the parameters announced by the peer and
// starts the symmetry procedure. On failure the link is torn down.
func (l *Link) internalActivate(tlv []byte) error {
	remote, remoteVersion, err := decodeLinkParams(tlv, l.log)
	if err != nil {
		l.log.Debug("invalid remote parameters", zap.Error(err))
		_ = l.internalDeactivate()
		return err
	}

	version, err := NegotiateVersion(l.cfg.version, remoteVersion)
	if err != nil {
		l.log.Debug("version negotiation failed", zap.Error(err))
		_ = l.internalDeactivate()
		return err
	}

	maxMIU := len(l.txBuf) - frame.MaxHeaderSize
	if int(remote.MIU) > maxMIU {
		remote.MIU = uint16(maxMIU)
	}

	l.version = version
	l.remote = remote
	l.log.Info("LLCP link activated",
		zap.String("version", fmt.Sprintf("%d.%d", version>>4, version&versionMinorMask)),
		zap.Uint16("remote_miu", remote.MIU),
		zap.Uint8("remote_lto", remote.LTO))

	l.resetLTO()
	l.counters.activations.Add(1)

	if cb := l.linkCB; cb != nil {
		l.queue(func() { cb(LinkActivated) })
	}
	return nil
}

// sendPAX transmits the local parameters with the configured version, never
// the negotiated one. PAX is not part of the symmetry procedure and leaves
// the turn untouched.
func (l *Link) sendPAX() error {
	var tlv [MaxParamsTLVLength]byte
	n, err := EncodeLinkParams(tlv[:], l.local, l.cfg.version)
	if err != nil {
		return err
	}
	pax := frame.Header{DSAP: frame.SAPLink, SSAP: frame.SAPLink, PType: frame.PTypePAX}
	return l.transmit(pax, nil, tlv[:n])
}

// handlePAX processes the peer's parameters while in the PAX state
func (l *Link) handlePAX(pdu []byte) {
	h, err := frame.ParseHeader(pdu, 0)
	if err != nil || h.PType != frame.PTypePAX {
		l.log.Debug("dropping PDU while exchanging parameters", zap.Int("len", len(pdu)))
		l.counters.dropped.Add(1)
		return
	}
	l.counters.countReceived(h)

	if err := l.internalActivate(pdu[frame.HeaderSize:]); err != nil {
		return
	}
	if l.role == RoleTarget {
		if err := l.sendPAX(); err != nil {
			l.log.Debug("PAX reply not sent", zap.Error(err))
			_ = l.internalDeactivate()
		}
	}
}

// internalDeactivate tears an active link down and asks the MAC to follow
func (l *Link) internalDeactivate() error {
	if !l.state.active() {
		return nil
	}
	l.teardown(false)
	if err := l.mac.Deactivate(); !accepted(err) {
		return failed(fmt.Errorf("MAC deactivate: %w", err))
	}
	return nil
}

// teardown stops the link: the timer is halted, deferred work is dropped and
// the upper layer is told. lost is set when the MAC went down on its own.
func (l *Link) teardown(lost bool) {
	l.log.Debug("deactivating link", zap.Stringer("state", l.state), zap.Bool("mac_lost", lost))
	l.setState(StateDeactivation)
	l.stopTimer()

	if l.pending != nil {
		frame.PutBuffer(l.pending.info)
		l.pending = nil
	}
	l.discPending = false
	l.frmrPending = false
	l.turnDeferred = false
	l.closeOnSent = false

	if cb := l.sendCB; cb != nil {
		l.sendCB = nil
		l.queue(func() { cb(failed(ErrLinkDeactivated)) })
	}

	l.counters.deactivations.Add(1)
	if cb := l.linkCB; cb != nil {
		l.queue(func() { cb(LinkDeactivated) })
	}
}
