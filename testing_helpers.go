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
	"errors"
	"sync"
	"time"
)

// errMockOutstanding is returned by MockMAC when a second send or receive is
// requested before the first completed
var errMockOutstanding = errors.New("mock MAC: request outstanding")

// MockMAC is a MAC driven by the test. Requests are recorded and complete only
// when the test calls the matching Complete/Deliver/Report method, which
// invokes the callback from the caller's goroutine.
type MockMAC struct {
	status  MACLinkStatusFunc
	checkCB CheckFunc
	sendCB  MACSendFunc
	recvCB  MACReceiveFunc
	recvBuf []byte
	sent    [][]byte
	checked []*RemoteDevice

	// Errors returned by the matching method while set
	ResetErr      error
	CheckErr      error
	ActivateErr   error
	DeactivateErr error
	SendErr       error
	ReceiveErr    error

	activations   int
	deactivations int
	mu            sync.Mutex
}

// NewMockMAC creates a new mock MAC
func NewMockMAC() *MockMAC {
	return &MockMAC{}
}

// Reset implements MAC
func (m *MockMAC) Reset(status MACLinkStatusFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResetErr != nil {
		return m.ResetErr
	}
	m.status = status
	m.checkCB = nil
	m.sendCB = nil
	m.recvCB = nil
	return nil
}

// ChkLlcp implements MAC
func (m *MockMAC) ChkLlcp(remote *RemoteDevice, cb CheckFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckErr != nil {
		return m.CheckErr
	}
	m.checked = append(m.checked, remote)
	m.checkCB = cb
	return ErrPending
}

// Activate implements MAC
func (m *MockMAC) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ActivateErr != nil {
		return m.ActivateErr
	}
	m.activations++
	return ErrPending
}

// Deactivate implements MAC
func (m *MockMAC) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeactivateErr != nil {
		return m.DeactivateErr
	}
	m.deactivations++
	m.recvCB = nil
	return nil
}

// Send implements MAC
func (m *MockMAC) Send(frame []byte, cb MACSendFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	if m.sendCB != nil {
		return errMockOutstanding
	}
	m.sent = append(m.sent, append([]byte(nil), frame...))
	m.sendCB = cb
	return ErrPending
}

// Receive implements MAC
func (m *MockMAC) Receive(buf []byte, cb MACReceiveFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReceiveErr != nil {
		return m.ReceiveErr
	}
	if m.recvCB != nil {
		return errMockOutstanding
	}
	m.recvBuf = buf
	m.recvCB = cb
	return ErrPending
}

// ReportActivated signals MAC activation with the given parameter block
func (m *MockMAC) ReportActivated(params []byte, role Role) {
	m.mu.Lock()
	status := m.status
	m.mu.Unlock()
	if status != nil {
		status(LinkActivated, params, role)
	}
}

// ReportDeactivated signals that the MAC link went down
func (m *MockMAC) ReportDeactivated() {
	m.mu.Lock()
	status := m.status
	m.recvCB = nil
	m.mu.Unlock()
	if status != nil {
		status(LinkDeactivated, nil, RoleInitiator)
	}
}

// CompleteCheck completes the outstanding ChkLlcp
func (m *MockMAC) CompleteCheck(err error) bool {
	m.mu.Lock()
	cb := m.checkCB
	m.checkCB = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(err)
	return true
}

// CompleteSend completes the outstanding Send
func (m *MockMAC) CompleteSend(err error) bool {
	m.mu.Lock()
	cb := m.sendCB
	m.sendCB = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(err)
	return true
}

// Deliver completes the outstanding Receive with pdu
func (m *MockMAC) Deliver(pdu []byte) bool {
	m.mu.Lock()
	cb, buf := m.recvCB, m.recvBuf
	m.recvCB = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	n := copy(buf, pdu)
	cb(buf[:n], nil)
	return true
}

// FailReceive completes the outstanding Receive with err
func (m *MockMAC) FailReceive(err error) bool {
	m.mu.Lock()
	cb := m.recvCB
	m.recvCB = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(nil, err)
	return true
}

// SentFrames returns copies of every frame handed to Send
func (m *MockMAC) SentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	frames := make([][]byte, len(m.sent))
	copy(frames, m.sent)
	return frames
}

// LastSent returns the most recent frame handed to Send, or nil
func (m *MockMAC) LastSent() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

// SendOutstanding reports whether a Send awaits completion
func (m *MockMAC) SendOutstanding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCB != nil
}

// ReceiveArmed reports whether a Receive awaits a frame
func (m *MockMAC) ReceiveArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recvCB != nil
}

// Activations returns how many times Activate succeeded
func (m *MockMAC) Activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations
}

// Deactivations returns how many times Deactivate succeeded
func (m *MockMAC) Deactivations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deactivations
}

// ManualTimer is a Timer that only fires when the test calls Fire
type ManualTimer struct {
	fn       func()
	duration time.Duration
	starts   int
	mu       sync.Mutex
	running  bool
	deleted  bool
}

// Start implements Timer
func (t *ManualTimer) Start(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
	t.fn = fn
	t.running = true
	t.starts++
}

// Stop implements Timer
func (t *ManualTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Delete implements Timer
func (t *ManualTimer) Delete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.deleted = true
	t.fn = nil
}

// Fire runs the expiry callback if the timer is armed
func (t *ManualTimer) Fire() bool {
	t.mu.Lock()
	fn := t.fn
	running := t.running
	t.running = false
	t.mu.Unlock()
	if !running || fn == nil {
		return false
	}
	fn()
	return true
}

// Duration returns the duration of the last Start
func (t *ManualTimer) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Running reports whether the timer is armed
func (t *ManualTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Deleted reports whether Delete was called
func (t *ManualTimer) Deleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted
}

// Starts returns how many times the timer was started
func (t *ManualTimer) Starts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.starts
}

// ManualTimerFactory hands out ManualTimers and remembers them
type ManualTimerFactory struct {
	// Err makes New fail
	Err       error
	// ReturnNil makes New hand out no timer and no error
	ReturnNil bool
	timers    []*ManualTimer
	mu        sync.Mutex
}

// New implements TimerFactory
func (f *ManualTimerFactory) New() (Timer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.ReturnNil {
		return nil, nil
	}
	t := &ManualTimer{}
	f.timers = append(f.timers, t)
	return t, nil
}

// Last returns the most recently created timer, or nil
func (f *ManualTimerFactory) Last() *ManualTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		return nil
	}
	return f.timers[len(f.timers)-1]
}

// Count returns how many timers were created
func (f *ManualTimerFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}
