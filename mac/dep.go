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

package mac

import (
	"context"
	"fmt"
	"sync"
	"time"

	llcp "github.com/ZaparooProject/go-llcp"
	"go.uber.org/zap"
)

// Config configures a DEP mapping
type Config struct {
	// Logger receives debug output; nil uses the llcp package logger
	Logger *zap.Logger
	// Role is the NFC-DEP role of the local device
	Role llcp.Role
	// WriteTimeout bounds a single frame write, zero means no bound
	WriteTimeout time.Duration
}

// DefaultConfig returns the configuration of an initiator
func DefaultConfig() Config {
	return Config{
		Role:         llcp.RoleInitiator,
		WriteTimeout: time.Second,
	}
}

// DEP implements llcp.MAC over a Port. Every completion is reported from a
// goroutine of its own.
type DEP struct {
	port   Port
	log    *zap.Logger
	status llcp.MACLinkStatusFunc
	ctx    context.Context
	cancel context.CancelFunc
	params []byte
	cfg    Config
	wg     sync.WaitGroup
	mu     sync.Mutex

	checked   bool
	active    bool
	sending   bool
	receiving bool
}

// NewDEP creates a DEP mapping over port
func NewDEP(port Port, cfg Config) *DEP {
	log := cfg.Logger
	if log == nil {
		log = llcp.Logger()
	}
	return &DEP{
		port: port,
		cfg:  cfg,
		log:  log.Named("mac").With(zap.Stringer("role", cfg.Role)),
	}
}

// Reset implements llcp.MAC. A running link is stopped without notice.
func (d *DEP) Reset(status llcp.MACLinkStatusFunc) error {
	if status == nil {
		return llcp.ErrInvalidParameter
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = status
	d.checked = false
	d.params = nil
	d.stopLocked()
	return nil
}

// ChkLlcp implements llcp.MAC by looking for the LLCP magic in the general
// bytes of the remote device
func (d *DEP) ChkLlcp(remote *llcp.RemoteDevice, cb llcp.CheckFunc) error {
	if remote == nil || cb == nil {
		return llcp.ErrInvalidParameter
	}

	params, err := ParseGeneralBytes(remote.GeneralBytes)

	d.mu.Lock()
	d.checked = err == nil
	d.params = append([]byte(nil), params...)
	d.mu.Unlock()

	d.log.Debug("LLCP check", zap.Binary("general_bytes", remote.GeneralBytes), zap.Error(err))
	d.async(func() { cb(err) })
	return llcp.ErrPending
}

// Activate implements llcp.MAC
func (d *DEP) Activate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.checked || d.active {
		return llcp.ErrInvalidState
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.active = true
	d.sending = false
	d.receiving = false

	var params []byte
	if len(d.params) > 0 {
		params = append([]byte(nil), d.params...)
	}
	status, role := d.status, d.cfg.Role
	d.log.Debug("activating", zap.Int("params", len(params)))
	d.async(func() { status(llcp.LinkActivated, params, role) })
	return llcp.ErrPending
}

// Deactivate implements llcp.MAC
func (d *DEP) Deactivate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}
	d.stopLocked()

	status, role := d.status, d.cfg.Role
	d.log.Debug("deactivated")
	d.async(func() { status(llcp.LinkDeactivated, nil, role) })
	return nil
}

// stopLocked cancels the activation context. d.mu must be held.
func (d *DEP) stopLocked() {
	if d.cancel != nil {
		d.cancel()
	}
	d.active = false
}

// Send implements llcp.MAC
func (d *DEP) Send(frm []byte, cb llcp.MACSendFunc) error {
	if cb == nil {
		return llcp.ErrInvalidParameter
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return llcp.ErrInvalidState
	}
	if d.sending {
		return llcp.ErrRejected
	}
	d.sending = true

	pdu := append([]byte(nil), frm...)
	ctx := d.ctx
	d.async(func() {
		writeCtx := ctx
		if d.cfg.WriteTimeout > 0 {
			var cancel context.CancelFunc
			writeCtx, cancel = context.WithTimeout(ctx, d.cfg.WriteTimeout)
			defer cancel()
		}
		err := d.port.WriteFrame(writeCtx, pdu)
		if err != nil {
			err = fmt.Errorf("write frame: %w", err)
		}

		d.mu.Lock()
		if d.ctx == ctx {
			d.sending = false
		}
		d.mu.Unlock()
		cb(err)
	})
	return llcp.ErrPending
}

// Receive implements llcp.MAC. A receive interrupted by Deactivate is
// dropped without completing.
func (d *DEP) Receive(buf []byte, cb llcp.MACReceiveFunc) error {
	if cb == nil || buf == nil {
		return llcp.ErrInvalidParameter
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return llcp.ErrInvalidState
	}
	if d.receiving {
		return llcp.ErrRejected
	}
	d.receiving = true

	ctx := d.ctx
	d.async(func() {
		pdu, err := d.port.ReadFrame(ctx)

		d.mu.Lock()
		if d.ctx == ctx {
			d.receiving = false
		}
		d.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			cb(nil, fmt.Errorf("read frame: %w", err))
			return
		}
		if len(pdu) > len(buf) {
			cb(nil, fmt.Errorf("%d byte PDU: %w", len(pdu), ErrFrameTooLarge))
			return
		}
		n := copy(buf, pdu)
		cb(buf[:n], nil)
	})
	return llcp.ErrPending
}

// Close stops the link and closes the port
func (d *DEP) Close() error {
	d.mu.Lock()
	d.stopLocked()
	d.mu.Unlock()

	err := d.port.Close()
	d.wg.Wait()
	return err
}

// async runs fn on its own goroutine and tracks it for Close
func (d *DEP) async(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

var _ llcp.MAC = (*DEP)(nil)
