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

// Package session keeps an LLCP link up: it checks and activates the peer,
// reports the link going up and down, delivers packets and starts over
// after every deactivation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	llcp "github.com/ZaparooProject/go-llcp"
	"github.com/ZaparooProject/go-llcp/internal/retry"
	"go.uber.org/zap"
)

// Manager supervises one Link over one MAC
type Manager struct {
	link       *llcp.Link
	mac        llcp.MAC
	config     *Config
	log        *zap.Logger
	OnLinkUp   func()
	OnLinkDown func()
	OnPacket   func(packet []byte)
	events     chan llcp.LinkStatus
	rx         []byte
	tx         []byte
	state      State
	mu         sync.Mutex
}

// NewManager creates a manager for link over mac
func NewManager(link *llcp.Link, mac llcp.MAC, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	log := config.Logger
	if log == nil {
		log = llcp.Logger()
	}
	return &Manager{
		link:   link,
		mac:    mac,
		config: config,
		log:    log.Named("session"),
		events: make(chan llcp.LinkStatus, 8),
		rx:     make([]byte, int(llcp.MIUMax)+3),
		tx:     make([]byte, int(llcp.MIUMax)+3),
	}
}

// Start runs the link until ctx is cancelled or a bring-up fails for good
func (m *Manager) Start(ctx context.Context) error {
	if m.link == nil || m.mac == nil || m.config.Remote == nil {
		return fmt.Errorf("session: link, MAC and remote device are required: %w", llcp.ErrInvalidParameter)
	}

	for {
		if err := m.bringUpWithRetry(ctx); err != nil {
			m.setState(StateIdle)
			return err
		}

		m.setState(StateUp)
		m.log.Info("link up", zap.String("session", m.link.GetStats().Session))
		if m.OnLinkUp != nil {
			m.OnLinkUp()
		}

		err := m.waitDown(ctx)
		m.setState(StateIdle)
		m.log.Info("link down")
		if m.OnLinkDown != nil {
			m.OnLinkDown()
		}
		if err != nil {
			return err
		}
	}
}

// GetState returns the current phase
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GetLink returns the managed link
func (m *Manager) GetLink() *llcp.Link {
	return m.link
}

// GetStats returns the counters of the managed link
func (m *Manager) GetStats() llcp.Stats {
	return m.link.GetStats()
}

// Send forwards a PDU to the link
func (m *Manager) Send(h llcp.Header, seq *llcp.Sequence, info []byte, cb llcp.SendFunc) error {
	return m.link.Send(h, seq, info, cb)
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != state {
		m.log.Debug("session state", zap.Stringer("from", m.state), zap.Stringer("to", state))
	}
	m.state = state
}

func (m *Manager) bringUpWithRetry(ctx context.Context) error {
	cfg := retry.Config{
		Description: "bring up link",
		MaxRetries:  m.config.MaxRetries,
		Delay:       m.config.RestartDelay,
		MaxDelay:    m.config.MaxRestartDelay,
		OnRetry: func(attempt int, err error) {
			m.log.Debug("bring-up failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		},
	}

	_, err := retry.Do(ctx, cfg, func(ctx context.Context) (struct{}, bool, error) {
		err := m.bringUp(ctx)
		switch {
		case err == nil:
			return struct{}{}, false, nil
		case ctx.Err() != nil:
			return struct{}{}, false, ctx.Err()
		case errors.Is(err, llcp.ErrInvalidParameter), errors.Is(err, llcp.ErrBufferTooSmall):
			return struct{}{}, false, err
		default:
			return struct{}{}, true, err
		}
	})
	return err
}

// bringUp runs Reset, ChkLlcp and Activate once
func (m *Manager) bringUp(ctx context.Context) error {
	m.setState(StateChecking)

	if err := m.link.Reset(m.mac, m.config.Params, m.rx, m.tx, m.onStatus); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	// Reset reports the teardown of a link left over from a failed attempt
	m.drainEvents()
	if err := m.link.Recv(m.onPacket); err != nil {
		return fmt.Errorf("recv: %w", err)
	}

	checked := make(chan error, 1)
	if err := m.link.ChkLlcp(m.config.Remote, func(err error) { checked <- err }); err != nil && !llcp.IsPending(err) {
		return fmt.Errorf("check: %w", err)
	}
	if err := waitResult(ctx, checked, m.config.CheckTimeout); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	m.setState(StateActivating)
	if err := m.link.Activate(); err != nil && !llcp.IsPending(err) {
		return fmt.Errorf("activate: %w", err)
	}

	timer := time.NewTimer(m.config.ActivateTimeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("activate: %w", ErrTimeout)
		case status := <-m.events:
			if status == llcp.LinkActivated {
				return nil
			}
			return fmt.Errorf("activate: %w", llcp.ErrLinkDeactivated)
		}
	}
}

// waitDown blocks until the link goes down. On cancellation the link is
// deactivated first.
func (m *Manager) waitDown(ctx context.Context) error {
	for {
		select {
		case status := <-m.events:
			if status == llcp.LinkDeactivated {
				return nil
			}
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		}
	}
}

func (m *Manager) shutdown() {
	if err := m.link.Deactivate(); err != nil && !llcp.IsPending(err) {
		m.log.Debug("deactivate on shutdown", zap.Error(err))
		return
	}

	timer := time.NewTimer(m.config.ShutdownTimeout)
	defer timer.Stop()
	for {
		select {
		case status := <-m.events:
			if status == llcp.LinkDeactivated {
				return
			}
		case <-timer.C:
			m.log.Debug("link did not go down in time")
			return
		}
	}
}

func (m *Manager) onStatus(status llcp.LinkStatus) {
	select {
	case m.events <- status:
	default:
		m.log.DPanic("link status dropped", zap.Stringer("status", status))
	}
}

func (m *Manager) onPacket(packet []byte, err error) {
	if err == nil && m.OnPacket != nil {
		m.OnPacket(packet)
	}
	if err := m.link.Recv(m.onPacket); err != nil {
		m.log.Debug("receive not re-armed", zap.Error(err))
	}
}

func (m *Manager) drainEvents() {
	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}

func waitResult(ctx context.Context, ch <-chan error, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-ch:
		return err
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
