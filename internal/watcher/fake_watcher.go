// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"sync"

	"github.com/golang/glog"
)

// FakeWatcher implements an in-memory Watcher.  Events are only delivered
// when injected by a test.
type FakeWatcher struct {
	mu       sync.RWMutex // protects following fields
	roots    []string
	watchErr error
	isClosed bool
	drained  bool // events channel closed

	events     chan Event
	done       chan struct{}
	eventsOnce sync.Once
}

// NewFakeWatcher returns a fake Watcher for use in tests.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{
		events: make(chan Event),
		done:   make(chan struct{}),
	}
}

// FailWatch makes subsequent calls to Watch return err.
func (w *FakeWatcher) FailWatch(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watchErr = err
}

// Watch records root as watched, unless FailWatch was called.
func (w *FakeWatcher) Watch(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchErr != nil {
		return w.watchErr
	}
	w.roots = append(w.roots, root)
	return nil
}

// Roots returns the roots passed to Watch.
func (w *FakeWatcher) Roots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.roots...)
}

func (w *FakeWatcher) Events() <-chan Event {
	return w.events
}

// Close closes down the FakeWatcher.
func (w *FakeWatcher) Close() error {
	w.closeEvents()
	w.mu.Lock()
	w.isClosed = true
	w.mu.Unlock()
	return nil
}

// IsClosed reports whether Close has been called.
func (w *FakeWatcher) IsClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isClosed
}

// CloseEvents closes the events channel without Close being called, as if
// the platform watcher had died.
func (w *FakeWatcher) CloseEvents() {
	w.closeEvents()
}

func (w *FakeWatcher) closeEvents() {
	w.eventsOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		w.drained = true
		close(w.events)
		w.mu.Unlock()
	})
}

// SendEvent delivers e to the consumer, blocking until it has been
// received.  It returns false if the watcher was closed first.
func (w *FakeWatcher) SendEvent(e Event) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.drained {
		glog.Infof("watcher closed, dropping %s", e)
		return false
	}
	select {
	case w.events <- e:
		return true
	case <-w.done:
		return false
	}
}

// InjectCreate lets a test inject a fake creation event.
func (w *FakeWatcher) InjectCreate(name string) bool {
	return w.SendEvent(Event{Op: Create, Pathname: name})
}

// InjectUpdate lets a test inject a fake update event.
func (w *FakeWatcher) InjectUpdate(name string) bool {
	return w.SendEvent(Event{Op: Update, Pathname: name})
}

// InjectDelete lets a test inject a fake deletion event.
func (w *FakeWatcher) InjectDelete(name string) bool {
	return w.SendEvent(Event{Op: Delete, Pathname: name})
}

// InjectRename lets a test inject a fake rename event.  to may be empty.
func (w *FakeWatcher) InjectRename(from, to string) bool {
	return w.SendEvent(Event{Op: Rename, Pathname: from, NewPathname: to})
}

// InjectOverflow lets a test simulate the platform dropping events.
func (w *FakeWatcher) InjectOverflow() bool {
	return w.SendEvent(Event{Op: Overflow})
}

// InjectError lets a test simulate a watcher error.
func (w *FakeWatcher) InjectError(err error) bool {
	return w.SendEvent(Event{Op: Error, Err: err})
}
