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

// Package i2c provides an I2C attached peer carrying LLCP PDUs in
// checksummed frames. Transport implements mac.Port.
package i2c

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	llcp "github.com/ZaparooProject/go-llcp"
	"github.com/ZaparooProject/go-llcp/internal/frame"
	"github.com/ZaparooProject/go-llcp/mac"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the 7-bit bus address of the peer
	DefaultAddress = 0x24

	// status byte leading every read
	peerReady = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// ready byte + extended frame overhead + largest PDU
	readSize = 1 + 10 + int(llcp.MIUMax) + frame.MaxHeaderSize

	maxReadRetries = 3
)

// Config configures the bus device
type Config struct {
	// Address is the 7-bit address of the peer
	Address uint16
	// PollInterval is the wait between ready checks
	PollInterval time.Duration
}

// DefaultConfig returns the default address polled every millisecond
func DefaultConfig() Config {
	return Config{
		Address:      DefaultAddress,
		PollInterval: time.Millisecond,
	}
}

// bus is the subset of i2c.Dev used by Transport
type bus interface {
	Tx(w, r []byte) error
}

// Transport is an LLCP port over I2C
type Transport struct {
	dev     bus
	closer  interface{ Close() error }
	busName string
	cfg     Config
	mu      sync.Mutex
	closed  atomic.Bool
}

// New opens busName and addresses the peer at cfg.Address
func New(busName string, cfg Config) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	_ = b.SetSpeed(maxClockFreq) // Ignore error, continue with default speed

	t := newTransport(&i2c.Dev{Addr: cfg.Address, Bus: b}, busName, cfg)
	t.closer = b
	return t, nil
}

func newTransport(dev bus, busName string, cfg Config) *Transport {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	return &Transport{dev: dev, busName: busName, cfg: cfg}
}

// WriteFrame implements mac.Port and waits for the peer's ACK
func (t *Transport) WriteFrame(ctx context.Context, pdu []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.closed.Load() {
		return mac.ErrClosed
	}
	if len(pdu)+frame.MinFrameLength+4 > readSize {
		return fmt.Errorf("%s: %d byte PDU: %w", t.busName, len(pdu), mac.ErrFrameTooLarge)
	}

	frm, err := frame.BuildFrame(frame.TFILLCP, pdu)
	if err != nil {
		return fmt.Errorf("%s: %w", t.busName, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dev.Tx(frm, nil); err != nil {
		return fmt.Errorf("failed to send I2C frame: %w", err)
	}
	return t.waitAck(ctx)
}

// waitAck polls until the peer acknowledges the last frame
func (t *Transport) waitAck(ctx context.Context) error {
	ackBuf := frame.GetSmallBuffer(1 + len(frame.AckFrame))
	defer frame.PutBuffer(ackBuf)

	for {
		if err := t.dev.Tx(nil, ackBuf); err != nil {
			return fmt.Errorf("I2C ACK read failed: %w", err)
		}
		if ackBuf[0] == peerReady {
			if bytes.Equal(ackBuf[1:], frame.AckFrame) {
				return nil
			}
			return fmt.Errorf("%s: expected ACK, got % X: %w", t.busName, ackBuf[1:], mac.ErrFrameCorrupted)
		}
		if err := t.sleep(ctx); err != nil {
			return err
		}
	}
}

// ReadFrame implements mac.Port. Good frames are acknowledged, corrupted
// ones are NACKed and read again before mac.ErrFrameCorrupted is returned.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	buf := frame.GetBuffer(readSize)
	defer frame.PutBuffer(buf)

	retries := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.closed.Load() {
			return nil, mac.ErrClosed
		}

		pdu, ready, err := t.readAttempt(buf)
		switch {
		case errors.Is(err, mac.ErrFrameCorrupted):
			retries++
			if retries >= maxReadRetries {
				return nil, err
			}
			if err := t.sendControl(frame.NackFrame); err != nil {
				return nil, err
			}
			continue
		case err != nil:
			return nil, err
		case pdu != nil:
			return pdu, nil
		case ready:
			continue
		}

		if err := t.sleep(ctx); err != nil {
			return nil, err
		}
	}
}

// readAttempt reads once from the peer. ready is false when the peer has
// nothing to say yet.
func (t *Transport) readAttempt(buf []byte) (pdu []byte, ready bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, false, fmt.Errorf("I2C frame data read failed: %w", err)
	}
	if buf[0] != peerReady {
		return nil, false, nil
	}

	tfi, data, _, err := frame.ParseFrame(buf[1:])
	switch {
	case err != nil:
		return nil, true, fmt.Errorf("%s: %w: %w", t.busName, mac.ErrFrameCorrupted, err)
	case data == nil:
		// stray ACK
		return nil, true, nil
	}

	if err := t.dev.Tx(frame.AckFrame, nil); err != nil {
		return nil, true, fmt.Errorf("failed to send ACK: %w", err)
	}
	if tfi != frame.TFILLCP {
		return nil, true, nil
	}
	return data, true, nil
}

func (t *Transport) sendControl(frm []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.dev.Tx(frm, nil); err != nil {
		return fmt.Errorf("failed to send control frame: %w", err)
	}
	return nil
}

func (t *Transport) sleep(ctx context.Context) error {
	timer := time.NewTimer(t.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases the bus
func (t *Transport) Close() error {
	if t.closed.Swap(true) || t.closer == nil {
		return nil
	}
	if err := t.closer.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// IsConnected returns true until the bus is closed
func (t *Transport) IsConnected() bool {
	return t.dev != nil && !t.closed.Load()
}

var _ mac.Port = (*Transport)(nil)
