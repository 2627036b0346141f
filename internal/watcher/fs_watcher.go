// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"expvar"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	eventCount = expvar.NewInt("watcher_events_total")
	errorCount = expvar.NewInt("watcher_errors_total")
	watchCount = expvar.NewInt("watcher_watches_added_total")
)

// FsWatcher implements a recursive Watcher on top of fsnotify, which only
// watches single directories.  Every directory below the root gets its own
// watch, and directories that appear later are added as they are created.
type FsWatcher struct {
	watcher *fsnotify.Watcher

	events     chan Event
	done       chan struct{} // Closed to stop the events handler.
	eventsDone chan struct{} // Closed when the events handler is done.

	closeOnce sync.Once
}

// NewFsWatcher returns a new FsWatcher, or returns an error.  A non-zero
// bufferSize sizes fsnotify's event channel, which helps absorb bursts on
// backends without a kernel queue.
func NewFsWatcher(bufferSize uint) (*FsWatcher, error) {
	var (
		f   *fsnotify.Watcher
		err error
	)
	if bufferSize > 0 {
		f, err = fsnotify.NewBufferedWatcher(bufferSize)
	} else {
		f, err = fsnotify.NewWatcher()
	}
	if err != nil {
		return nil, classify("", err, false)
	}
	w := &FsWatcher{
		watcher:    f,
		events:     make(chan Event),
		done:       make(chan struct{}),
		eventsDone: make(chan struct{}),
	}
	go w.runEvents()
	return w, nil
}

// Watch registers every directory under root.
func (w *FsWatcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "Failed to lookup absolute path of %q", root)
	}
	glog.V(2).Infof("Adding a recursive watch on resolved path %q", absRoot)
	return w.addTree(absRoot, true, false)
}

// Events implements the Watcher interface.
func (w *FsWatcher) Events() <-chan Event {
	return w.events
}

// Watches returns the number of directories currently watched.
func (w *FsWatcher) Watches() int {
	return len(w.watcher.WatchList())
}

// addTree walks top and adds a watch for each directory found.  If emit is
// set, every entry below top is also reported as created, since it may have
// appeared before the watch on its parent was in place.
func (w *FsWatcher) addTree(top string, isRoot, emit bool) error {
	return filepath.WalkDir(top, func(path string, d fs.DirEntry, err error) error {
		subtree := !isRoot || path != top
		if err != nil {
			// Vanished mid-walk; the removal is reported by the parent's watch.
			if subtree && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return classify(path, err, subtree)
		}
		if emit && path != top {
			if !w.send(Event{Op: Create, Pathname: path}) {
				return filepath.SkipAll
			}
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if subtree && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return classify(path, err, subtree)
		}
		watchCount.Add(1)
		return nil
	})
}

func (w *FsWatcher) send(e Event) bool {
	select {
	case w.events <- e:
		return true
	case <-w.done:
		return false
	}
}

func (w *FsWatcher) runEvents() {
	defer close(w.eventsDone)
	defer close(w.events)

	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				glog.Info("fsnotify events channel closed")
				return
			}
			if !w.handle(e) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				glog.Info("fsnotify errors channel closed")
				return
			}
			errorCount.Add(1)
			glog.Warningf("fsnotify error: %s", err)
			if !w.send(errorEvent(err)) {
				return
			}
		case <-w.done:
			return
		}
	}
}

// errorEvent translates an error from the fsnotify backend.  A queue
// overflow means events were lost.
func errorEvent(err error) Event {
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		return Event{Op: Overflow}
	}
	return Event{Op: Error, Err: err}
}

// handle translates one fsnotify event, returning false once the watcher
// is shutting down.
func (w *FsWatcher) handle(e fsnotify.Event) bool {
	eventCount.Add(1)
	glog.V(2).Infof("watcher event %v", e)
	switch {
	case e.Has(fsnotify.Create):
		if !w.send(Event{Op: Create, Pathname: e.Name}) {
			return false
		}
		fi, err := os.Lstat(e.Name)
		if err != nil || !fi.IsDir() {
			return true
		}
		if err := w.addTree(e.Name, false, true); err != nil {
			errorCount.Add(1)
			glog.Warningf("Failed to watch new directory %q: %s", e.Name, err)
			return w.send(Event{Op: Error, Err: err})
		}
	case e.Has(fsnotify.Write), e.Has(fsnotify.Chmod):
		return w.send(Event{Op: Update, Pathname: e.Name})
	case e.Has(fsnotify.Remove):
		return w.send(Event{Op: Delete, Pathname: e.Name})
	case e.Has(fsnotify.Rename):
		// Only the old name is known here; the new name receives a Create.
		return w.send(Event{Op: Rename, Pathname: e.Name})
	default:
		glog.V(2).Infof("Ignoring event %v", e)
	}
	return true
}

// Close shuts down the FsWatcher and closes the Events channel.  It is safe
// to call more than once.
func (w *FsWatcher) Close() (err error) {
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		<-w.eventsDone
		glog.V(2).Info("Closed fsnotify watcher")
	})
	return err
}
