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
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Link
type Option func(*Link) error

// linkConfig survives Reset
type linkConfig struct {
	newTimer TimerFactory
	logger   *zap.Logger
	version  byte
}

// defaultLinkConfig returns the configuration of a zero Link
func defaultLinkConfig() linkConfig {
	return linkConfig{
		newTimer: NewSystemTimer,
		version:  Version,
	}
}

// WithVersion sets the protocol version announced to peers
func WithVersion(version byte) Option {
	return func(l *Link) error {
		if version&versionMajorMask == 0 {
			return ErrInvalidParameter
		}
		l.cfg.version = version
		return nil
	}
}

// WithTimerFactory replaces the timer used for the symmetry procedure
func WithTimerFactory(factory TimerFactory) Option {
	return func(l *Link) error {
		if factory == nil {
			return ErrInvalidParameter
		}
		l.cfg.newTimer = factory
		return nil
	}
}

// WithLogger sets the logger used by the link instead of the package logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Link) error {
		l.cfg.logger = logger
		return nil
	}
}

// New creates an unconfigured link. Call Reset before use.
func New(opts ...Option) (*Link, error) {
	link := &Link{cfg: defaultLinkConfig()}

	for _, opt := range opts {
		if err := opt(link); err != nil {
			return nil, err
		}
	}

	return link, nil
}
