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

// Package retry provides the bounded retry loop shared by the link
// supervisors
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned once every attempt has asked to be retried
var ErrExhausted = errors.New("retries exhausted")

// Operation is a function that can be retried.
// Returns: result, shouldRetry, error
//   - result: the value if successful
//   - shouldRetry: true if the operation should be tried again; error then
//     carries the transient cause and may be nil
//   - error: with shouldRetry false, a permanent error that stops retries
type Operation[T any] func(ctx context.Context) (T, bool, error)

// Config configures retry behavior
type Config struct {
	// OnRetry is called before each new attempt with the failed attempt
	// number (from 1) and its cause
	OnRetry     func(attempt int, err error)
	Description string
	// MaxRetries bounds the attempts after the first; negative is unlimited
	MaxRetries int
	// Delay before the first retry, doubled for each further one
	Delay time.Duration
	// MaxDelay caps the backoff, zero leaves it uncapped
	MaxDelay time.Duration
}

// Backoff returns the wait before retry number attempt (from 1)
func (c Config) Backoff(attempt int) time.Duration {
	d := c.Delay
	for i := 1; i < attempt && d > 0; i++ {
		d *= 2
		if c.MaxDelay > 0 && d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Do executes op until it succeeds, fails permanently, runs out of retries
// or ctx ends
func Do[T any](ctx context.Context, cfg Config, op Operation[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; cfg.MaxRetries < 0 || attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, shouldRetry, err := op(ctx)
		if !shouldRetry {
			if err != nil {
				return zero, err
			}
			return result, nil
		}
		lastErr = err

		if cfg.MaxRetries >= 0 && attempt >= cfg.MaxRetries {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		if d := cfg.Backoff(attempt + 1); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, exhausted(cfg, lastErr)
}

func exhausted(cfg Config, cause error) error {
	desc := cfg.Description
	if desc == "" {
		desc = "operation"
	}
	if cause == nil {
		return fmt.Errorf("%s: %w", desc, ErrExhausted)
	}
	return fmt.Errorf("%s: %w: %w", desc, ErrExhausted, cause)
}
