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

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	llcp "github.com/ZaparooProject/go-llcp"
	"github.com/ZaparooProject/go-llcp/internal/retry"
	testutil "github.com/ZaparooProject/go-llcp/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventTimeout = 2 * time.Second

type managerFixture struct {
	manager *Manager
	link    *llcp.Link
	mac     *llcp.MockMAC
	up      chan struct{}
	down    chan struct{}
	packets chan []byte
}

func newManagerFixture(t *testing.T, tweak func(*Config)) *managerFixture {
	t.Helper()

	timers := &llcp.ManualTimerFactory{}
	link, err := llcp.New(llcp.WithTimerFactory(timers.New))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Remote = &llcp.RemoteDevice{ID: testutil.TestPeerID}
	cfg.RestartDelay = time.Millisecond
	if tweak != nil {
		tweak(cfg)
	}

	f := &managerFixture{
		link:    link,
		mac:     llcp.NewMockMAC(),
		up:      make(chan struct{}, 4),
		down:    make(chan struct{}, 4),
		packets: make(chan []byte, 4),
	}
	f.manager = NewManager(link, f.mac, cfg)
	f.manager.OnLinkUp = func() { f.up <- struct{}{} }
	f.manager.OnLinkDown = func() { f.down <- struct{}{} }
	f.manager.OnPacket = func(packet []byte) { f.packets <- packet }
	return f
}

func (f *managerFixture) start(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.manager.Start(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

// completeCheck answers the next ChkLlcp the manager issues
func (f *managerFixture) completeCheck(t *testing.T, err error) {
	t.Helper()
	require.Eventually(t, func() bool { return f.mac.CompleteCheck(err) }, eventTimeout, time.Millisecond)
}

// activate answers the next check and MAC activation
func (f *managerFixture) activate(t *testing.T) {
	t.Helper()

	f.completeCheck(t, nil)
	require.Eventually(t, func() bool {
		return f.link.State() == llcp.StateActivation
	}, eventTimeout, time.Millisecond)

	params, err := llcp.MarshalLinkParams(llcp.DefaultLinkParams(), llcp.Version)
	require.NoError(t, err)
	f.mac.ReportActivated(params, llcp.RoleTarget)
	wait(t, f.up, "link up")
}

func wait[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(eventTimeout):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func TestManagerLifecycle(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, nil)
	cancel, done := f.start(t)

	f.activate(t)
	assert.Equal(t, StateUp, f.manager.GetState())
	assert.True(t, f.mac.ReceiveArmed())

	ui := testutil.BuildUI(0x10, 0x20, []byte("hi"))
	require.True(t, f.mac.Deliver(ui))
	assert.Equal(t, ui, wait(t, f.packets, "packet"))

	// the receiver is re-armed for the next packet
	require.Eventually(t, f.mac.ReceiveArmed, eventTimeout, time.Millisecond)
	require.True(t, f.mac.CompleteSend(nil))
	second := testutil.BuildUI(0x10, 0x20, []byte("again"))
	require.True(t, f.mac.Deliver(second))
	assert.Equal(t, second, wait(t, f.packets, "second packet"))

	f.mac.ReportDeactivated()
	wait(t, f.down, "link down")

	// a lost link is brought up again
	f.activate(t)
	assert.Equal(t, uint64(2), f.manager.GetStats().Activations)

	cancel()
	assert.ErrorIs(t, wait(t, done, "Start to return"), context.Canceled)
	wait(t, f.down, "link down on cancel")
	assert.Equal(t, StateIdle, f.manager.GetState())
	assert.Equal(t, []byte{0x01, 0x40}, f.mac.LastSent(), "DISC sent on shutdown")
}

func TestManagerSend(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, nil)
	f.start(t)
	f.activate(t)

	sent := make(chan error, 1)
	h := llcp.Header{DSAP: 0x10, SSAP: 0x20, PType: llcp.PTypeUI}
	err := f.manager.Send(h, nil, []byte{0xAA}, func(err error) { sent <- err })
	require.ErrorIs(t, err, llcp.ErrPending)
	assert.Equal(t, uint64(1), f.manager.GetStats().DeferredSends, "the target waits for its turn")
}

func TestManagerRetriesFailedCheck(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, func(cfg *Config) { cfg.MaxRetries = 1 })
	_, done := f.start(t)

	errNoLLCP := errors.New("no LLCP")
	f.completeCheck(t, errNoLLCP)
	f.completeCheck(t, errNoLLCP)

	err := wait(t, done, "Start to return")
	require.ErrorIs(t, err, retry.ErrExhausted)
	assert.ErrorIs(t, err, errNoLLCP)
	assert.ErrorIs(t, err, llcp.ErrFailed)
	assert.Empty(t, f.up)
}

func TestManagerActivationTimeout(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, func(cfg *Config) {
		cfg.MaxRetries = 0
		cfg.ActivateTimeout = 20 * time.Millisecond
	})
	_, done := f.start(t)

	f.completeCheck(t, nil)
	err := wait(t, done, "Start to return")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateIdle, f.manager.GetState())
}

func TestManagerRetryTearsDownStaleActivation(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, func(cfg *Config) {
		cfg.MaxRetries = 1
		cfg.ActivateTimeout = 20 * time.Millisecond
	})
	f.start(t)

	// the first activation never completes
	f.completeCheck(t, nil)

	f.activate(t)
	assert.Equal(t, StateUp, f.manager.GetState())
	assert.Equal(t, 1, f.mac.Deactivations(), "stale activation released by Reset")
	assert.Equal(t, uint64(1), f.manager.GetStats().Activations)
}

func TestManagerInvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("no remote", func(t *testing.T) {
		t.Parallel()
		f := newManagerFixture(t, func(cfg *Config) { cfg.Remote = nil })
		assert.ErrorIs(t, f.manager.Start(context.Background()), llcp.ErrInvalidParameter)
	})

	t.Run("bad params are not retried", func(t *testing.T) {
		t.Parallel()
		f := newManagerFixture(t, func(cfg *Config) { cfg.Params.MIU = 1 })
		assert.ErrorIs(t, f.manager.Start(context.Background()), llcp.ErrInvalidParameter)
	})
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want  string
		state State
	}{
		{state: StateIdle, want: "idle"},
		{state: StateChecking, want: "checking"},
		{state: StateActivating, want: "activating"},
		{state: StateUp, want: "up"},
		{state: State(42), want: "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestNewManagerDefaults(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, nil, nil)
	assert.Equal(t, DefaultConfig(), m.config)
	assert.Equal(t, StateIdle, m.GetState())
}
