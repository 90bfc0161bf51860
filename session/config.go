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

package session

import (
	"time"

	llcp "github.com/ZaparooProject/go-llcp"
	"go.uber.org/zap"
)

// Config configures a Manager
type Config struct {
	// Remote is the peer checked before every activation
	Remote *llcp.RemoteDevice
	// Logger defaults to the llcp package logger
	Logger *zap.Logger
	// Params are announced to the peer
	Params          llcp.LinkParams
	CheckTimeout    time.Duration
	ActivateTimeout time.Duration
	// ShutdownTimeout bounds the wait for the link to go down on cancel
	ShutdownTimeout time.Duration
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration
	// MaxRetries bounds failed bring-ups in a row; negative retries forever
	MaxRetries int
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Params:          llcp.DefaultLinkParams(),
		CheckTimeout:    time.Second,
		ActivateTimeout: 5 * time.Second,
		ShutdownTimeout: time.Second,
		RestartDelay:    100 * time.Millisecond,
		MaxRestartDelay: 5 * time.Second,
		MaxRetries:      -1,
	}
}
