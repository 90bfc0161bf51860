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

package uart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-llcp/mac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream feeds scripted chunks to Read and records writes
type fakeStream struct {
	in      chan []byte
	done    chan struct{}
	pending []byte
	written []byte
	mu      sync.Mutex
	once    sync.Once
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	s := &fakeStream{in: make(chan []byte, len(chunks)+8), done: make(chan struct{})}
	for _, c := range chunks {
		s.in <- c
	}
	return s
}

func (s *fakeStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		select {
		case chunk := <-s.in:
			s.pending = chunk
		case <-s.done:
			return 0, io.EOF
		case <-time.After(5 * time.Millisecond):
			return 0, nil
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, p...)
	return len(p), nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *fakeStream) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.written...)
}

var symmFrame = []byte{0x00, 0x00, 0xFF, 0x03, 0xFD, 0xDE, 0x00, 0x00, 0x22, 0x00}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 115200, cfg.BaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.ReadTimeout)
}

func TestWriteFrame(t *testing.T) {
	t.Parallel()
	s := newFakeStream()
	tr := newTransport(s, "/dev/ttyUSB0")

	require.NoError(t, tr.WriteFrame(context.Background(), []byte{0x00, 0x00}))
	assert.Equal(t, symmFrame, s.Written())
}

func TestWriteFrameErrors(t *testing.T) {
	t.Parallel()

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tr := newTransport(newFakeStream(), "test")
		assert.ErrorIs(t, tr.WriteFrame(ctx, []byte{0x00, 0x00}), context.Canceled)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		tr := newTransport(newFakeStream(), "test")
		assert.ErrorIs(t, tr.WriteFrame(context.Background(), make([]byte, 0xFFFF)), mac.ErrFrameTooLarge)
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		tr := newTransport(newFakeStream(), "test")
		require.NoError(t, tr.Close())
		assert.ErrorIs(t, tr.WriteFrame(context.Background(), []byte{0x00, 0x00}), mac.ErrClosed)
		assert.False(t, tr.IsConnected())
	})
}

func TestReadFrame(t *testing.T) {
	t.Parallel()

	ack := []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	foreign := []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD5, 0x03, 0x28, 0x00}

	tests := []struct {
		name   string
		chunks [][]byte
	}{
		{name: "single chunk", chunks: [][]byte{symmFrame}},
		{name: "split frame", chunks: [][]byte{symmFrame[:4], symmFrame[4:7], symmFrame[7:]}},
		{name: "garbage before", chunks: [][]byte{{0x55, 0x55, 0x55}, symmFrame}},
		{name: "after ACK", chunks: [][]byte{ack, symmFrame}},
		{name: "after foreign TFI", chunks: [][]byte{foreign, symmFrame}},
		{name: "start code split after zero", chunks: [][]byte{{0x12, 0x00}, symmFrame[1:]}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTransport(newFakeStream(tt.chunks...), "test")

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			pdu, err := tr.ReadFrame(ctx)
			require.NoError(t, err)
			assert.Equal(t, []byte{0x00, 0x00}, pdu)
		})
	}
}

func TestReadFrameBackToBack(t *testing.T) {
	t.Parallel()

	disc := []byte{0x00, 0x00, 0xFF, 0x03, 0xFD, 0xDE, 0x01, 0x40, 0xE1, 0x00}
	both := append(append([]byte(nil), symmFrame...), disc...)
	tr := newTransport(newFakeStream(both), "test")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := tr.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, first)

	second, err := tr.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x40}, second)
}

func TestReadFrameCorrupted(t *testing.T) {
	t.Parallel()

	bad := append([]byte(nil), symmFrame...)
	bad[8] = 0x23
	tr := newTransport(newFakeStream(bad, symmFrame), "test")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := tr.ReadFrame(ctx)
	require.ErrorIs(t, err, mac.ErrFrameCorrupted)

	pdu, err := tr.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, pdu)
}

// TestReadFrameContextCancellation checks that an already cancelled context
// returns immediately
func TestReadFrameContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := newTransport(newFakeStream(symmFrame), "test")

	start := time.Now()
	_, err := tr.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

// TestReadFrameContextTimeout checks that a silent line gives up at the
// context deadline
func TestReadFrameContextTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	tr := newTransport(newFakeStream(), "test")

	start := time.Now()
	_, err := tr.ReadFrame(ctx)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestReadFrameClosed(t *testing.T) {
	t.Parallel()
	tr := newTransport(newFakeStream(), "test")

	errs := make(chan error, 1)
	go func() {
		_, err := tr.ReadFrame(context.Background())
		errs <- err
	}()
	require.NoError(t, tr.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, mac.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("ReadFrame did not return after Close")
	}
}
