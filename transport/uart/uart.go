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

// Package uart provides a serial port carrying LLCP PDUs in checksummed
// frames. Transport implements mac.Port.
package uart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-llcp/internal/frame"
	"github.com/ZaparooProject/go-llcp/mac"
	"go.bug.st/serial"
)

// Config configures the serial line
type Config struct {
	// BaudRate of the line
	BaudRate int
	// ReadTimeout bounds each read from the port, which is how often a
	// blocked ReadFrame notices a cancelled context
	ReadTimeout time.Duration
}

// DefaultConfig returns 115200 baud 8N1 with a 50 ms read timeout
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		ReadTimeout: 50 * time.Millisecond,
	}
}

const readChunkSize = 64

// stream is the subset of serial.Port used by Transport
type stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Transport is an LLCP port over a serial line
type Transport struct {
	port     stream
	portName string
	buf      []byte
	readMu   sync.Mutex
	writeMu  sync.Mutex
	closed   atomic.Bool
}

// New opens portName with cfg
func New(portName string, cfg Config) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
		}
	}
	return newTransport(port, portName), nil
}

func newTransport(port stream, portName string) *Transport {
	return &Transport{port: port, portName: portName}
}

// WriteFrame implements mac.Port
func (t *Transport) WriteFrame(ctx context.Context, pdu []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.closed.Load() {
		return mac.ErrClosed
	}
	if len(pdu)+1 > frame.MaxExtendedDataLength {
		return fmt.Errorf("%s: %d byte PDU: %w", t.portName, len(pdu), mac.ErrFrameTooLarge)
	}

	frm, err := frame.BuildFrame(frame.TFILLCP, pdu)
	if err != nil {
		return fmt.Errorf("%s: %w", t.portName, err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	for len(frm) > 0 {
		n, err := t.port.Write(frm)
		if err != nil {
			return fmt.Errorf("serial write on %s: %w", t.portName, err)
		}
		frm = frm[n:]
	}
	return nil
}

// ReadFrame implements mac.Port. ACK, NACK and frames with a foreign TFI
// are skipped. A frame failing its checksums is consumed and reported as
// mac.ErrFrameCorrupted.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	var chunk [readChunkSize]byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.closed.Load() {
			return nil, mac.ErrClosed
		}

		pdu, ok, err := t.nextFrame()
		if err != nil || ok {
			return pdu, err
		}

		n, err := t.port.Read(chunk[:])
		if err != nil {
			if t.closed.Load() {
				return nil, mac.ErrClosed
			}
			return nil, fmt.Errorf("serial read on %s: %w", t.portName, err)
		}
		t.buf = append(t.buf, chunk[:n]...)
	}
}

// nextFrame takes the next LLCP frame out of the receive buffer
func (t *Transport) nextFrame() (pdu []byte, ok bool, err error) {
	for len(t.buf) > 0 {
		tfi, data, consumed, err := frame.ParseFrame(t.buf)
		switch {
		case errors.Is(err, frame.ErrIncomplete):
			return nil, false, nil
		case errors.Is(err, frame.ErrNoStartCode):
			// a trailing zero may open the next start code
			if t.buf[len(t.buf)-1] == frame.StartCode1 {
				t.buf = append(t.buf[:0], frame.StartCode1)
			} else {
				t.buf = t.buf[:0]
			}
			return nil, false, nil
		case errors.Is(err, frame.ErrChecksumMismatch):
			t.consume(consumed)
			return nil, false, fmt.Errorf("%s: %w: %w", t.portName, mac.ErrFrameCorrupted, err)
		case err != nil:
			t.consume(max(consumed, 1))
			continue
		}

		t.consume(consumed)
		if data == nil || tfi != frame.TFILLCP {
			continue
		}
		return data, true, nil
	}
	return nil, false, nil
}

func (t *Transport) consume(n int) {
	t.buf = append(t.buf[:0], t.buf[n:]...)
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true until the port is closed
func (t *Transport) IsConnected() bool {
	return t.port != nil && !t.closed.Load()
}

var _ mac.Port = (*Transport)(nil)
