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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "pending", err: ErrPending, want: false},
		{name: "wrapped pending", err: fmt.Errorf("send: %w", ErrPending), want: false},
		{name: "invalid parameter", err: ErrInvalidParameter, want: false},
		{name: "invalid state in link error", err: newLinkError("send", StateResetInit, ErrInvalidState), want: false},
		{name: "rejected", err: ErrRejected, want: false},
		{name: "buffer too small", err: ErrBufferTooSmall, want: true},
		{name: "failed", err: failed(errors.New("MAC gone")), want: true},
		{name: "incompatible version", err: failed(ErrIncompatibleVersion), want: true},
		{name: "unknown error", err: errors.New("boom"), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestIsPending(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPending(ErrPending))
	assert.True(t, IsPending(newLinkError("deactivate", StateOperationRecv, ErrPending)))
	assert.False(t, IsPending(nil))
	assert.False(t, IsPending(ErrFailed))
}

func TestFailedWrapsOnce(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")
	err := failed(failed(cause))

	assert.ErrorIs(t, err, ErrFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, strings.Count(err.Error(), ErrFailed.Error()))
}

func TestLinkError(t *testing.T) {
	t.Parallel()

	err := newLinkError("activate", StateChecked, failed(ErrInsufficientResources))

	assert.Equal(t, "llcp activate (state CHECKED): operation failed: insufficient resources", err.Error())
	assert.ErrorIs(t, err, ErrInsufficientResources)
	assert.ErrorIs(t, err, ErrFailed)

	var linkErr *LinkError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &linkErr)
	assert.Equal(t, StateChecked, linkErr.State)
}
