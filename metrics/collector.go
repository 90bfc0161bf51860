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

// Package metrics exports link statistics to Prometheus
package metrics

import (
	llcp "github.com/ZaparooProject/go-llcp"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "llcp"

// StatsSource is implemented by llcp.Link and session.Manager
type StatsSource interface {
	GetStats() llcp.Stats
}

// Collector is a prometheus.Collector reading a StatsSource on every scrape
type Collector struct {
	source         StatsSource
	frames         *prometheus.Desc
	pdus           *prometheus.Desc
	deferredSends  *prometheus.Desc
	activations    *prometheus.Desc
	deactivations  *prometheus.Desc
	ltoExpirations *prometheus.Desc
	dropped        *prometheus.Desc
}

// NewCollector creates a collector for source. constLabels tell several
// links apart.
func NewCollector(source StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, constLabels)
	}
	return &Collector{
		source:         source,
		frames:         desc("frames_total", "LLCP frames by direction.", "direction"),
		pdus:           desc("link_pdus_total", "Link management PDUs by direction and type.", "direction", "type"),
		deferredSends:  desc("deferred_sends_total", "Sends held until the peer handed over the turn."),
		activations:    desc("activations_total", "Links brought up."),
		deactivations:  desc("deactivations_total", "Links torn down."),
		ltoExpirations: desc("lto_expirations_total", "Links lost to the link timeout."),
		dropped:        desc("dropped_frames_total", "Frames dropped as malformed or unexpected."),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.pdus
	ch <- c.deferredSends
	ch <- c.activations
	ch <- c.deactivations
	ch <- c.ltoExpirations
	ch <- c.dropped
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.GetStats()

	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.frames, s.FramesSent, "tx")
	counter(c.frames, s.FramesReceived, "rx")

	counter(c.pdus, s.SymmSent, "tx", "SYMM")
	counter(c.pdus, s.SymmReceived, "rx", "SYMM")
	counter(c.pdus, s.PaxSent, "tx", "PAX")
	counter(c.pdus, s.PaxReceived, "rx", "PAX")
	counter(c.pdus, s.AgfReceived, "rx", "AGF")
	counter(c.pdus, s.DiscSent, "tx", "DISC")
	counter(c.pdus, s.DiscReceived, "rx", "DISC")
	counter(c.pdus, s.FrmrSent, "tx", "FRMR")
	counter(c.pdus, s.FrmrReceived, "rx", "FRMR")

	counter(c.deferredSends, s.DeferredSends)
	counter(c.activations, s.Activations)
	counter(c.deactivations, s.Deactivations)
	counter(c.ltoExpirations, s.LTOExpirations)
	counter(c.dropped, s.Dropped)
}

var _ prometheus.Collector = (*Collector)(nil)
