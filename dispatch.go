// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"expvar"

	"github.com/golang/glog"
	"github.com/google/dirtytracker/internal/watcher"
)

var (
	eventsTotal   = expvar.NewInt("tracker_events_total")
	eventsDropped = expvar.NewInt("tracker_events_dropped_total")
	unknownTotal  = expvar.NewMap("tracker_unknown_total")
)

// Reasons for becoming Unknown, as counted in tracker_unknown_total.
const (
	reasonSetup    = "setup"
	reasonOverflow = "overflow"
	reasonError    = "error"
	reasonClosed   = "closed"
)

// run is the dispatcher: it applies events to the store in arrival order
// until Close, or until the tracker becomes Unknown.
func (t *Tracker) run(events <-chan watcher.Event) {
	defer close(t.runDone)
	for {
		select {
		case <-t.ctx.Done():
			return
		case e, ok := <-events:
			// Anything still in flight at Close is discarded.
			if t.ctx.Err() != nil {
				return
			}
			if !ok {
				glog.Warningf("Watch on %q ended unexpectedly", t.root)
				t.degrade(reasonClosed)
				return
			}
			if !t.apply(e) {
				return
			}
		}
	}
}

// apply processes a single event, returning false if no further events can
// change the verdict.
func (t *Tracker) apply(e watcher.Event) bool {
	eventsTotal.Add(1)
	glog.V(2).Infof("Tracker on %q got %s", t.root, e)
	switch e.Op {
	case watcher.Overflow:
		t.degrade(reasonOverflow)
		return false
	case watcher.Error:
		glog.Warningf("Watch on %q failed: %s", t.root, e.Err)
		t.degrade(reasonError)
		return false
	}
	paths := t.norm.Paths(e)
	if len(paths) == 0 {
		eventsDropped.Add(1)
		return true
	}
	for _, p := range paths {
		if t.isSentinel(p, e.Op) {
			continue
		}
		if t.store.MarkDirty(p) {
			glog.V(2).Infof("%q is dirty", p)
		}
	}
	return true
}

// degrade moves the tracker to Unknown and releases the watch, since no
// later event can make the verdict trustworthy again.
func (t *Tracker) degrade(reason string) {
	if t.store.MarkUnknown() {
		unknownTotal.Add(reason, 1)
		glog.Infof("Tracker on %q is now unknown: %s", t.root, reason)
	}
	t.unknownOnce.Do(func() { close(t.unknown) })
	if t.w != nil {
		if err := t.w.Close(); err != nil {
			glog.Warningf("Failed to release watch on %q: %s", t.root, err)
		}
	}
}
