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
	"sync"
	"time"
)

// Timer is a restartable one-shot timer
type Timer interface {
	// Start (re)arms the timer; fn runs on expiry unless Stop or Start is
	// called first
	Start(d time.Duration, fn func())
	// Stop disarms the timer
	Stop()
	// Delete releases the timer. It is not used afterwards.
	Delete()
}

// TimerFactory creates the symmetry timer when the MAC link comes up
type TimerFactory func() (Timer, error)

// systemTimer implements Timer with time.AfterFunc
type systemTimer struct {
	timer *time.Timer
	mu    sync.Mutex
}

// NewSystemTimer returns a Timer backed by the Go runtime timers
func NewSystemTimer() (Timer, error) {
	return &systemTimer{}, nil
}

func (t *systemTimer) Start(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fn)
}

func (t *systemTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *systemTimer) Delete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// ltoDuration converts an LTO value in 10 ms units. Zero selects the default.
func ltoDuration(lto uint8) time.Duration {
	if lto == 0 {
		lto = LTODefault
	}
	return time.Duration(lto) * 10 * time.Millisecond
}
