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

	"github.com/ZaparooProject/go-llcp/internal/frame"
)

// Status errors returned by the link API
var (
	// ErrPending is not a failure: the operation was accepted and completes
	// later through its callback.
	ErrPending = errors.New("operation pending")

	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidState     = errors.New("invalid state")
	ErrRejected         = errors.New("operation rejected: another one is outstanding")
	ErrBufferTooSmall   = frame.ErrBufferTooSmall
	ErrFailed           = errors.New("operation failed")
)

// Failure details. Each of these is reported wrapped together with ErrFailed.
var (
	ErrIncompatibleVersion   = errors.New("incompatible LLCP version")
	ErrMissingMandatoryField = errors.New("missing mandatory parameter")
	ErrInvalidFormat         = frame.ErrInvalidFormat
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrLinkDeactivated       = errors.New("link deactivated")
)

// LinkError wraps an error raised by a link operation together with the
// state the link was in at the time.
type LinkError struct {
	Err   error
	Op    string
	State State
}

// Error implements the error interface
func (e *LinkError) Error() string {
	return fmt.Sprintf("llcp %s (state %s): %v", e.Op, e.State, e.Err)
}

// Unwrap returns the underlying error
func (e *LinkError) Unwrap() error {
	return e.Err
}

// newLinkError wraps err for op
func newLinkError(op string, state State, err error) *LinkError {
	return &LinkError{Op: op, State: state, Err: err}
}

// failed marks err as a generic failure while keeping the detail matchable
func failed(err error) error {
	if errors.Is(err, ErrFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFailed, err)
}

// IsPending reports whether err only signals asynchronous completion
func IsPending(err error) bool {
	return errors.Is(err, ErrPending)
}

// IsFatal reports whether err ended (or prevented) the link. Pending, state,
// parameter and rejection errors leave the link as it was.
func IsFatal(err error) bool {
	if err == nil || IsPending(err) {
		return false
	}
	switch {
	case errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrRejected):
		return false
	default:
		return true
	}
}

// accepted reports whether a MAC call result means success or in progress
func accepted(err error) bool {
	return err == nil || IsPending(err)
}
