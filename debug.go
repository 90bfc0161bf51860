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
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	debugEnabled  atomic.Bool
	packageLogger atomic.Pointer[zap.Logger]
)

func init() {
	packageLogger.Store(zap.NewNop())
}

// SetDebugEnabled turns debug output on or off. Enabling it without a logger
// installed through SetLogger switches to a zap development logger.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
	if !enabled || Logger().Core().Enabled(zap.DebugLevel) {
		return
	}
	if dev, err := zap.NewDevelopment(); err == nil {
		packageLogger.Store(dev)
	}
}

// SetLogger installs the logger used by links created without WithLogger.
// A nil logger silences output.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	packageLogger.Store(logger)
}

// Logger returns the package logger
func Logger() *zap.Logger {
	return packageLogger.Load()
}

// debugLogger is the package logger while debug output is on, a no-op
// logger otherwise
func debugLogger() *zap.Logger {
	if debugEnabled.Load() {
		return Logger()
	}
	return zap.NewNop()
}
