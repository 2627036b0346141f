// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/google/dirtytracker/internal/watcher"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const sentinelPrefix = ".dirtytracker-sync-"

// removeSentinel is replaced in tests.
var removeSentinel = os.Remove

// A sentinel is a file Sync creates and removes in the root.  It is kept
// out of the dirty set, and the first event seen for it releases the waiter.
type sentinel struct {
	seen     chan struct{}
	released bool
}

// Sync blocks until every change made before the call has been applied, so
// that a following State or Paths reflects them.  It does this by creating
// and removing a uniquely named file in the root and waiting for the
// dispatcher to see the first event for it, which the platform reports after
// any earlier change.  The caller needs write access to the root.
//
// Sync returns nil once the tracker is Unknown, since there is nothing left
// to wait for, and ErrClosed after Close.  ctx bounds the wait.
func (t *Tracker) Sync(ctx context.Context) error {
	if t.ctx.Err() != nil {
		return ErrClosed
	}
	if t.State() == Unknown {
		return nil
	}

	name := filepath.Join(t.root, sentinelPrefix+uuid.NewString())
	s := &sentinel{seen: make(chan struct{})}
	t.sentinelsMu.Lock()
	t.sentinels[name] = s
	t.sentinelsMu.Unlock()

	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		t.forgetSentinel(name)
		return errors.Wrap(err, "failed to create sync sentinel")
	}
	if err := f.Close(); err != nil {
		glog.Warningf("Failed to close sync sentinel %q: %s", name, err)
	}
	if err := removeSentinel(name); err != nil {
		t.forgetSentinel(name)
		return errors.Wrap(err, "failed to remove sync sentinel")
	}

	select {
	case <-s.seen:
		return nil
	case <-t.unknown:
		return nil
	case <-t.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isSentinel reports whether path belongs to Sync, releasing its waiter on
// the first event.  The entry is dropped once the removal is seen.
func (t *Tracker) isSentinel(path string, op watcher.OpType) bool {
	t.sentinelsMu.Lock()
	defer t.sentinelsMu.Unlock()
	s, ok := t.sentinels[path]
	if !ok {
		return false
	}
	if !s.released {
		s.released = true
		close(s.seen)
	}
	if op == watcher.Delete {
		delete(t.sentinels, path)
	}
	return true
}

func (t *Tracker) forgetSentinel(name string) {
	t.sentinelsMu.Lock()
	delete(t.sentinels, name)
	t.sentinelsMu.Unlock()
}
