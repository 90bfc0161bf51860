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

// Package npp implements the NDEF Push Protocol: NDEF messages pushed to
// a peer in UI PDUs over an LLCP link.
package npp

import (
	"encoding/binary"
	"errors"
	"fmt"

	llcp "github.com/ZaparooProject/go-llcp"
	"github.com/hsanjuan/go-ndef"
)

const (
	// Version of the protocol written by Encode
	Version byte = 0x01
	// ActionPush is the only action code defined
	ActionPush byte = 0x01
	// ServiceName is the name the service registers under
	ServiceName = "com.android.npp"

	headerSize      = 5 // version + entry count
	entryHeaderSize = 5 // action + NDEF length
)

// NPP errors
var (
	ErrUnsupportedVersion = errors.New("unsupported NPP version")
	ErrUnsupportedAction  = errors.New("unsupported NPP action")
	ErrTruncated          = errors.New("truncated NPP message")
	ErrNotUI              = errors.New("not a UI PDU")
)

// Sender is implemented by llcp.Link and session.Manager
type Sender interface {
	Send(h llcp.Header, seq *llcp.Sequence, info []byte, cb llcp.SendFunc) error
}

// Encode builds an NPP message pushing msgs
func Encode(msgs ...*ndef.Message) ([]byte, error) {
	out := make([]byte, headerSize, 64)
	out[0] = Version
	binary.BigEndian.PutUint32(out[1:], uint32(len(msgs)))

	for i, msg := range msgs {
		if msg == nil {
			return nil, fmt.Errorf("entry %d: nil message", i)
		}
		raw, err := msg.Marshal()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		var entry [entryHeaderSize]byte
		entry[0] = ActionPush
		binary.BigEndian.PutUint32(entry[1:], uint32(len(raw)))
		out = append(out, entry[:]...)
		out = append(out, raw...)
	}
	return out, nil
}

// Decode parses an NPP message. Any version with major number 0 is
// accepted.
func Decode(buf []byte) ([]*ndef.Message, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%d byte header: %w", len(buf), ErrTruncated)
	}
	if buf[0]>>4 != Version>>4 {
		return nil, fmt.Errorf("version 0x%02X: %w", buf[0], ErrUnsupportedVersion)
	}

	count := binary.BigEndian.Uint32(buf[1:])
	buf = buf[headerSize:]
	// every entry takes at least its header
	if uint64(count)*entryHeaderSize > uint64(len(buf)) {
		return nil, fmt.Errorf("%d entries in %d bytes: %w", count, len(buf), ErrTruncated)
	}

	msgs := make([]*ndef.Message, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(buf) < entryHeaderSize {
			return nil, fmt.Errorf("entry %d header: %w", i, ErrTruncated)
		}
		if buf[0] != ActionPush {
			return nil, fmt.Errorf("entry %d action 0x%02X: %w", i, buf[0], ErrUnsupportedAction)
		}
		size := binary.BigEndian.Uint32(buf[1:])
		buf = buf[entryHeaderSize:]
		if uint64(size) > uint64(len(buf)) {
			return nil, fmt.Errorf("entry %d of %d bytes: %w", i, size, ErrTruncated)
		}

		msg := &ndef.Message{}
		if _, err := msg.Unmarshal(buf[:size]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		msgs = append(msgs, msg)
		buf = buf[size:]
	}
	return msgs, nil
}

// Push sends msg from ssap to dsap in a UI PDU
func Push(s Sender, dsap, ssap byte, msg *ndef.Message, cb llcp.SendFunc) error {
	info, err := Encode(msg)
	if err != nil {
		return err
	}
	return s.Send(llcp.Header{DSAP: dsap, SSAP: ssap, PType: llcp.PTypeUI}, nil, info, cb)
}

// ParsePacket decodes the NDEF messages in a packet handed to a RecvFunc
func ParsePacket(packet []byte) ([]*ndef.Message, error) {
	h, _, info, err := llcp.ParsePDU(packet)
	if err != nil {
		return nil, fmt.Errorf("parse PDU: %w", err)
	}
	if h.PType != llcp.PTypeUI {
		return nil, fmt.Errorf("%s: %w", h, ErrNotUI)
	}
	return Decode(info)
}
