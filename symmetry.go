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
	"time"

	"go.uber.org/zap"
)

// firstTurnDelay lets the side owning the first turn answer almost at once
const firstTurnDelay = time.Millisecond

// resetLTO restarts the symmetry timer and hands the turn over. It runs for
// every frame sent or received while operational.
func (l *Link) resetLTO() {
	l.stopTimer()

	first := false
	switch l.state {
	case StateOperationRecv:
		l.setState(StateOperationSend)
	case StateOperationSend:
		l.setState(StateOperationRecv)
	default:
		first = true
		if l.role == RoleInitiator {
			l.setState(StateOperationSend)
		} else {
			l.setState(StateOperationRecv)
		}
	}

	var d time.Duration
	switch {
	case l.state == StateOperationRecv:
		d = ltoDuration(l.remote.LTO)
	case first:
		d = firstTurnDelay
	default:
		d = ltoDuration(l.local.LTO) / 2
	}

	l.startTimer(d)
}

// ensureTimer creates the symmetry timer unless one survives from an
// earlier activation
func (l *Link) ensureTimer() error {
	if l.symmTimer != nil {
		return nil
	}
	timer, err := l.cfg.newTimer()
	switch {
	case err != nil:
		return failed(fmt.Errorf("symmetry timer: %w: %w", ErrInsufficientResources, err))
	case timer == nil:
		return failed(fmt.Errorf("symmetry timer: %w", ErrInsufficientResources))
	}
	l.symmTimer = timer
	return nil
}

// startTimer arms the symmetry timer for the current generation
func (l *Link) startTimer(d time.Duration) {
	if l.symmTimer == nil {
		return
	}
	l.timerGen++
	gen := l.timerGen
	l.symmTimer.Start(d, func() { l.onSymmTimer(gen) })
}

// stopTimer disarms the symmetry timer; an expiry already on its way is
// ignored
func (l *Link) stopTimer() {
	l.timerGen++
	if l.symmTimer != nil {
		l.symmTimer.Stop()
	}
}

// onSymmTimer handles expiry of the symmetry timer
func (l *Link) onSymmTimer(gen uint64) {
	l.lock()
	defer l.unlock()

	if gen != l.timerGen {
		return
	}

	switch l.state {
	case StateOperationRecv:
		l.log.Debug("link timeout", zap.Uint8("remote_lto", l.remote.LTO))
		l.counters.ltoExpirations.Add(1)
		_ = l.internalDeactivate()
	case StateOperationSend:
		l.handlePendingSend()
	default:
		l.log.Debug("stray symmetry timer", zap.Stringer("state", l.state))
	}
}
