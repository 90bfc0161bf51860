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

// Package mac maps LLCP onto an NFC-DEP style byte link. DEP implements
// llcp.MAC over any Port; the transport packages provide Ports for serial
// and I2C attached peers and NewPipe connects two links in memory.
package mac

import (
	"context"
	"errors"
	"sync"
)

// Port errors
var (
	ErrClosed         = errors.New("port closed")
	ErrFrameCorrupted = errors.New("frame corrupted")
	ErrFrameTooLarge  = errors.New("frame too large")
)

// Port moves whole LLCP PDUs to and from the peer device
type Port interface {
	// WriteFrame transmits one PDU
	WriteFrame(ctx context.Context, pdu []byte) error
	// ReadFrame blocks until a PDU arrives, the context ends or the port closes
	ReadFrame(ctx context.Context) ([]byte, error)
	// Close releases the port. Pending reads and writes fail with ErrClosed.
	Close() error
}

// pipe is the shared state of two connected pipe ports
type pipe struct {
	ab, ba chan []byte
	done   chan struct{}
	once   sync.Once
}

type pipePort struct {
	p   *pipe
	in  <-chan []byte
	out chan<- []byte
}

// NewPipe returns two ports connected back to back. Closing either side
// closes both.
func NewPipe() (Port, Port) {
	p := &pipe{
		ab:   make(chan []byte, 1),
		ba:   make(chan []byte, 1),
		done: make(chan struct{}),
	}
	return &pipePort{p: p, in: p.ba, out: p.ab}, &pipePort{p: p, in: p.ab, out: p.ba}
}

func (pp *pipePort) WriteFrame(ctx context.Context, pdu []byte) error {
	frm := append([]byte(nil), pdu...)
	select {
	case <-pp.p.done:
		return ErrClosed
	default:
	}
	select {
	case pp.out <- frm:
		return nil
	default:
	}
	select {
	case pp.out <- frm:
		return nil
	case <-pp.p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (pp *pipePort) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case frm := <-pp.in:
		return frm, nil
	case <-pp.p.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (pp *pipePort) Close() error {
	pp.p.once.Do(func() { close(pp.p.done) })
	return nil
}
