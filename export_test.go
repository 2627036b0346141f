// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"github.com/google/dirtytracker/internal/watcher"
)

// withWatcher makes New use w instead of a platform watcher.
type withWatcher struct {
	w watcher.Watcher
}

func (opt withWatcher) apply(t *Tracker) error {
	t.newWatcher = func() (watcher.Watcher, error) {
		return opt.w, nil
	}
	return nil
}

// pendingSentinels returns the names of Sync sentinels not yet removed.
func (t *Tracker) pendingSentinels() []string {
	t.sentinelsMu.Lock()
	defer t.sentinelsMu.Unlock()
	var names []string
	for name := range t.sentinels {
		names = append(names, name)
	}
	return names
}
