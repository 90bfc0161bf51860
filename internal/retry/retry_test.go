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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("permanent")

	tests := []struct {
		wantErr      error
		name         string
		failures     int
		maxRetries   int
		wantAttempts int
		permanent    bool
	}{
		{name: "first try", failures: 0, maxRetries: 3, wantAttempts: 1},
		{name: "after retries", failures: 2, maxRetries: 3, wantAttempts: 3},
		{name: "exhausted", failures: 10, maxRetries: 2, wantAttempts: 3, wantErr: ErrExhausted},
		{name: "no retries", failures: 1, maxRetries: 0, wantAttempts: 1, wantErr: ErrExhausted},
		{name: "unlimited", failures: 5, maxRetries: -1, wantAttempts: 6},
		{name: "permanent", failures: 1, maxRetries: 3, wantAttempts: 1, permanent: true, wantErr: errPermanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			attempts := 0
			var retried []int
			cfg := Config{
				MaxRetries:  tt.maxRetries,
				Description: "test",
				OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
			}
			got, err := Do(context.Background(), cfg, func(context.Context) (int, bool, error) {
				attempts++
				if tt.permanent {
					return 0, false, errPermanent
				}
				if attempts <= tt.failures {
					return 0, true, errTransient
				}
				return 42, false, nil
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Len(t, retried, tt.wantAttempts-1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if errors.Is(tt.wantErr, ErrExhausted) {
					assert.ErrorIs(t, err, errTransient)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 42, got)
		})
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxRetries: -1, Delay: time.Hour}

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, cfg, func(context.Context) (struct{}, bool, error) {
			return struct{}{}, true, errTransient
		})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	cfg := Config{Delay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, cfg.Backoff(1))
	assert.Equal(t, 20*time.Millisecond, cfg.Backoff(2))
	assert.Equal(t, 40*time.Millisecond, cfg.Backoff(3))
	assert.Equal(t, 50*time.Millisecond, cfg.Backoff(4))
	assert.Equal(t, 50*time.Millisecond, cfg.Backoff(30))

	assert.Equal(t, time.Duration(0), Config{}.Backoff(3))
	assert.Equal(t, 80*time.Millisecond, Config{Delay: 10 * time.Millisecond}.Backoff(4))
}
