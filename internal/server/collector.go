// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package server

import (
	"github.com/google/dirtytracker"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dirtyPathsDesc = prometheus.NewDesc(
		"dirtytracker_dirty_paths",
		"number of paths changed since tracking began; absent while the state is unknown",
		[]string{"root"}, nil)
	stateDesc = prometheus.NewDesc(
		"dirtytracker_state",
		"1 for the tracker's current state, 0 for the others",
		[]string{"root", "state"}, nil)
)

var allStates = []dirtytracker.State{dirtytracker.Clean, dirtytracker.Dirty, dirtytracker.Unknown}

// trackerCollector exports a Tracker's snapshot to Prometheus.
type trackerCollector struct {
	t *dirtytracker.Tracker
}

// Describe implements the prometheus.Collector interface.
func (c trackerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- dirtyPathsDesc
	ch <- stateDesc
}

// Collect implements the prometheus.Collector interface.
func (c trackerCollector) Collect(ch chan<- prometheus.Metric) {
	root := c.t.Root()
	state, paths := c.t.Snapshot()
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(stateDesc, prometheus.GaugeValue, v, root, s.String())
	}
	if state != dirtytracker.Unknown {
		ch <- prometheus.MustNewConstMetric(dirtyPathsDesc, prometheus.GaugeValue, float64(len(paths)), root)
	}
}
