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
	"sync"

	"github.com/ZaparooProject/go-llcp/internal/frame"
	"go.uber.org/zap"
)

// State is the state of the link state machine
type State int

const (
	StateResetInit State = iota
	StateChecked
	StateActivation
	StatePAX
	StateOperationRecv
	StateOperationSend
	StateDeactivation
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case StateResetInit:
		return "RESET_INIT"
	case StateChecked:
		return "CHECKED"
	case StateActivation:
		return "ACTIVATION"
	case StatePAX:
		return "PAX"
	case StateOperationRecv:
		return "OPERATION_RECV"
	case StateOperationSend:
		return "OPERATION_SEND"
	case StateDeactivation:
		return "DEACTIVATION"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// operational reports whether the symmetry procedure is running
func (s State) operational() bool {
	return s == StateOperationRecv || s == StateOperationSend
}

// active reports whether the MAC link is (being) brought up
func (s State) active() bool {
	return s == StateActivation || s == StatePAX || s.operational()
}

// pendingSend is a frame accepted by Send while the peer held the turn
type pendingSend struct {
	seq    *frame.Sequence
	info   []byte // from frame.GetBuffer, owned by the link
	header frame.Header
}

// Link is an LLCP link over one MAC mapping.
//
// Thread Safety: all methods are safe to call from any goroutine. MAC and
// timer callbacks are serialised with the API by an internal lock. Upper
// layer callbacks run after the lock is released, so they may call back
// into the Link.
type Link struct {
	mac       MAC
	symmTimer Timer
	log       *zap.Logger

	linkCB  LinkStatusFunc
	checkCB CheckFunc
	sendCB  SendFunc
	recvCB  RecvFunc

	pending *pendingSend

	rxBuf []byte
	txBuf []byte

	// callbacks collected under the lock, run by unlock
	notify []func()

	session string
	cfg     linkConfig

	counters linkCounters

	local  LinkParams
	remote LinkParams

	timerGen uint64
	state    State
	role     Role
	version  byte

	frmrInfo   [frame.FRMRInfoSize]byte
	frmrHeader frame.Header

	mu sync.Mutex

	discPending  bool
	frmrPending  bool
	txInFlight   bool
	turnDeferred bool // our turn came while a MAC send was still in flight
	closeOnSent  bool // deactivate once the DISC in flight completes
}

// lock acquires the link lock
func (l *Link) lock() {
	l.mu.Lock()
}

// unlock releases the link lock and runs the callbacks queued meanwhile
func (l *Link) unlock() {
	notify := l.notify
	l.notify = nil
	l.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

// queue defers an upper layer callback until the lock is released
func (l *Link) queue(fn func()) {
	l.notify = append(l.notify, fn)
}

// setState records a state transition
func (l *Link) setState(state State) {
	if l.state != state {
		l.log.Debug("state transition", zap.Stringer("from", l.state), zap.Stringer("to", state))
	}
	l.state = state
}

// Reset configures the link. rx and tx are the receive and transmit buffers
// used for every frame; they must hold a header plus the default MIU, and rx
// must also hold the MIU announced in params. An active link is deactivated
// first, failing any deferred send. The link returns to RESET_INIT and any
// previous activation is forgotten.
func (l *Link) Reset(mac MAC, params LinkParams, rx, tx []byte, cb LinkStatusFunc) error {
	if mac == nil || cb == nil || rx == nil || tx == nil {
		return ErrInvalidParameter
	}
	if params.MIU < MIUDefault || params.MIU > MIUMax {
		return fmt.Errorf("MIU %d: %w", params.MIU, ErrInvalidParameter)
	}
	minSize := int(MIUDefault) + frame.MaxHeaderSize
	if len(rx) < minSize || len(tx) < minSize {
		return fmt.Errorf("buffers rx=%d tx=%d, need %d: %w", len(rx), len(tx), minSize, ErrBufferTooSmall)
	}
	if len(rx) < int(params.MIU)+frame.MaxHeaderSize {
		return fmt.Errorf("rx buffer %d cannot hold MIU %d: %w", len(rx), params.MIU, ErrBufferTooSmall)
	}

	l.lock()
	defer l.unlock()

	// a live link is torn down first so its callbacks still see the failure
	if err := l.internalDeactivate(); err != nil {
		l.log.Debug("deactivation before reset failed", zap.Error(err))
	}
	if l.symmTimer != nil {
		l.symmTimer.Delete()
	}
	if l.pending != nil {
		frame.PutBuffer(l.pending.info)
	}

	cfg := l.cfg
	if cfg.newTimer == nil {
		cfg.newTimer = NewSystemTimer
	}
	if cfg.version == 0 {
		cfg.version = Version
	}
	base := cfg.logger
	if base == nil {
		base = Logger()
	}

	l.mac = mac
	l.symmTimer = nil
	l.log = base
	l.linkCB = cb
	l.checkCB = nil
	l.sendCB = nil
	l.recvCB = nil
	l.pending = nil
	l.rxBuf = rx
	l.txBuf = tx
	l.session = ""
	l.cfg = cfg
	l.local = params
	l.remote = DefaultLinkParams()
	l.timerGen++
	l.state = StateResetInit
	l.role = RoleInitiator
	l.version = cfg.version
	l.discPending = false
	l.frmrPending = false
	l.txInFlight = false
	l.turnDeferred = false
	l.closeOnSent = false

	if err := mac.Reset(l.onMACLinkStatus); err != nil {
		return newLinkError("reset", l.state, fmt.Errorf("MAC reset: %w", err))
	}
	return nil
}

// ChkLlcp asks the MAC layer whether remote speaks LLCP. The result is
// reported through cb; on success the link moves to CHECKED.
func (l *Link) ChkLlcp(remote *RemoteDevice, cb CheckFunc) error {
	if remote == nil || cb == nil {
		return ErrInvalidParameter
	}

	l.lock()
	defer l.unlock()

	if l.mac == nil || l.state != StateResetInit {
		return newLinkError("check", l.state, ErrInvalidState)
	}
	if l.checkCB != nil {
		return newLinkError("check", l.state, ErrRejected)
	}

	l.checkCB = cb
	if err := l.mac.ChkLlcp(remote, l.onCheckComplete); !accepted(err) {
		l.checkCB = nil
		return newLinkError("check", l.state, failed(err))
	}
	return ErrPending
}

// onCheckComplete is the MAC completion of ChkLlcp
func (l *Link) onCheckComplete(err error) {
	l.lock()
	defer l.unlock()

	if err == nil && l.state == StateResetInit {
		l.setState(StateChecked)
	}
	if cb := l.checkCB; cb != nil {
		l.checkCB = nil
		if err != nil {
			err = failed(err)
		}
		l.queue(func() { cb(err) })
	}
}

// Activate starts MAC activation. The link status callback reports when
// the LLCP link is up.
func (l *Link) Activate() error {
	l.lock()
	defer l.unlock()

	if l.state != StateChecked {
		return newLinkError("activate", l.state, ErrInvalidState)
	}

	if err := l.ensureTimer(); err != nil {
		return newLinkError("activate", l.state, err)
	}

	l.setState(StateActivation)
	err := l.mac.Activate()
	if !accepted(err) {
		l.setState(StateChecked)
		return newLinkError("activate", StateActivation, failed(err))
	}
	return err
}

// Deactivate closes an operational link. A DISC is sent to the peer first;
// when a frame is already on its way the DISC is deferred and ErrPending
// is returned, the link status callback then reports the teardown.
func (l *Link) Deactivate() error {
	l.lock()
	defer l.unlock()

	if !l.state.operational() {
		return newLinkError("deactivate", l.state, ErrInvalidState)
	}

	if l.txInFlight || l.pending != nil {
		l.log.Debug("send in flight, deferring DISC")
		l.discPending = true
		return ErrPending
	}

	disc := frame.Header{DSAP: frame.SAPLink, SSAP: frame.SAPLink, PType: frame.PTypeDISC}
	if err := l.internalSend(disc, nil, nil); err != nil {
		l.log.Debug("DISC not sent", zap.Error(err))
	}
	if err := l.internalDeactivate(); err != nil {
		return newLinkError("deactivate", l.state, err)
	}
	return nil
}

// GetLocalInfo returns the parameters announced by this side
func (l *Link) GetLocalInfo() (LinkParams, error) {
	l.lock()
	defer l.unlock()

	if l.mac == nil {
		return LinkParams{}, ErrInvalidState
	}
	return l.local, nil
}

// GetRemoteInfo returns the parameters announced by the peer, with the MIU
// limited to what the transmit buffer can carry
func (l *Link) GetRemoteInfo() (LinkParams, error) {
	l.lock()
	defer l.unlock()

	if !l.state.operational() {
		return LinkParams{}, newLinkError("remote info", l.state, ErrInvalidState)
	}
	return l.remote, nil
}

// Recv registers cb for the next packet addressed to a transport SAP. The
// registration is consumed by that packet.
func (l *Link) Recv(cb RecvFunc) error {
	if cb == nil {
		return ErrInvalidParameter
	}

	l.lock()
	defer l.unlock()

	if l.mac == nil {
		return newLinkError("recv", l.state, ErrInvalidState)
	}
	if l.recvCB != nil {
		return newLinkError("recv", l.state, ErrRejected)
	}
	l.recvCB = cb
	return nil
}

// State returns the current state
func (l *Link) State() State {
	l.lock()
	defer l.unlock()
	return l.state
}

// Role returns the role of the current or last MAC activation
func (l *Link) Role() Role {
	l.lock()
	defer l.unlock()
	return l.role
}

// Version returns the negotiated version once operational, the announced
// one before
func (l *Link) Version() byte {
	l.lock()
	defer l.unlock()
	return l.version
}
