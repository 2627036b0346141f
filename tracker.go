// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package dirtytracker tracks which files beneath a directory have changed
// since tracking began, without checksumming anything.
//
// A Tracker watches its root recursively and reports one of three states:
// Clean (nothing observed), Dirty (the paths returned by Paths changed), or
// Unknown (the platform could not watch the tree, or dropped events).
// Unknown is terminal; callers should fall back to a full rescan.
//
//	t, err := dirtytracker.New(ctx, dir)
//	if err != nil {
//		return err
//	}
//	defer t.Close()
//	...
//	paths, ok := t.Paths()
//	if !ok {
//		// rescan everything
//	}
package dirtytracker

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/google/dirtytracker/internal/dirtystate"
	"github.com/google/dirtytracker/internal/pathnorm"
	"github.com/google/dirtytracker/internal/watcher"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// State is the tracker's verdict on the watched tree.
type State = dirtystate.State

const (
	Clean   = dirtystate.Clean
	Dirty   = dirtystate.Dirty
	Unknown = dirtystate.Unknown
)

// Tracker records the paths that change beneath a root directory.  All
// methods are safe for concurrent use.
type Tracker struct {
	root  string
	norm  *pathnorm.Normalizer
	store *dirtystate.Store
	w     watcher.Watcher // nil if the watch could not be established

	bufferSize uint
	newWatcher func() (watcher.Watcher, error)

	ctx       context.Context // cancelled by Close
	cancel    context.CancelFunc
	runDone   chan struct{} // closed when the dispatcher has returned
	closeOnce sync.Once

	unknown     chan struct{} // closed on the transition to Unknown
	unknownOnce sync.Once

	sentinelsMu sync.Mutex // protects sentinels
	sentinels   map[string]*sentinel
}

// New starts tracking changes beneath root, which must be an existing
// directory.  If the platform cannot watch the tree the Tracker is still
// returned, in the Unknown state.  ctx only scopes construction; the
// Tracker runs until Close.
func New(ctx context.Context, root string, options ...Option) (*Tracker, error) {
	_, span := trace.StartSpan(ctx, "dirtytracker.New")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("root", root))

	t := &Tracker{
		store:     dirtystate.New(),
		runDone:   make(chan struct{}),
		unknown:   make(chan struct{}),
		sentinels: make(map[string]*sentinel),
	}
	t.newWatcher = func() (watcher.Watcher, error) {
		return watcher.NewFsWatcher(t.bufferSize)
	}
	for _, option := range options {
		if err := option.apply(t); err != nil {
			return nil, err
		}
	}

	// filepath.Abs would resolve "" to the working directory.
	if root == "" {
		return nil, errors.Wrap(ErrInvalidRoot, "empty root")
	}
	norm, err := pathnorm.New(root)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRoot, err.Error())
	}
	t.norm = norm
	t.root = norm.Root()
	t.ctx, t.cancel = context.WithCancel(context.Background())

	w, err := establish(t.newWatcher, t.root)
	if err != nil {
		var le *watcher.LimitError
		if !errors.As(err, &le) {
			t.cancel()
			span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: err.Error()})
			return nil, err
		}
		glog.Warningf("Cannot watch %q, changes are untracked: %s", t.root, err)
		span.Annotate(nil, "watch limit reached")
		t.degrade(reasonSetup)
		close(t.runDone)
		return t, nil
	}
	t.w = w
	glog.Infof("Tracking changes under %q", t.root)
	go t.run(w.Events())
	return t, nil
}

// Root returns the absolute path of the watched directory.
func (t *Tracker) Root() string {
	return t.root
}

// State returns the current state.  It never blocks on filesystem activity.
func (t *Tracker) State() State {
	return t.store.State()
}

// Paths returns the sorted absolute paths that have changed, and true, or
// nil and false if the state is Unknown.  The slice is the caller's.
func (t *Tracker) Paths() ([]string, bool) {
	_, paths := t.store.Snapshot()
	return paths, paths != nil
}

// Snapshot returns the state and the dirty paths as of a single instant.
// paths is nil exactly when state is Unknown.
func (t *Tracker) Snapshot() (state State, paths []string) {
	return t.store.Snapshot()
}

// RelPaths is like Paths, with each path relative to the root.  A change to
// the root directory itself is reported as ".".
func (t *Tracker) RelPaths() ([]string, bool) {
	paths, ok := t.Paths()
	if !ok {
		return nil, false
	}
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		r, ok := t.norm.Rel(p)
		if !ok {
			continue
		}
		rel = append(rel, r)
	}
	return rel, true
}

// Close stops tracking and releases the watch.  Once Close returns the
// state no longer changes.  It is safe to call more than once.
func (t *Tracker) Close() (err error) {
	t.closeOnce.Do(func() {
		t.cancel()
		if t.w != nil {
			err = t.w.Close()
		}
		<-t.runDone
		glog.V(2).Infof("Stopped tracking %q", t.root)
	})
	return err
}
