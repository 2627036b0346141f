// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

// Option configures a Tracker.
type Option interface {
	apply(*Tracker) error
}

// BufferSize sets the size of the platform watcher's event buffer.  Zero, the
// default, leaves the platform default in place.
type BufferSize uint

func (opt BufferSize) apply(t *Tracker) error {
	t.bufferSize = uint(opt)
	return nil
}
