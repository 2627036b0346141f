// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package watcher provides a way of recursively watching a directory tree for
// filesystem events and delivering them to a single consumer.
package watcher

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

type OpType int

const (
	_ OpType = iota
	Create
	Update // content or metadata change
	Delete
	Rename
	Overflow // the platform dropped events
	Error    // the watch can no longer be trusted; see Event.Err
)

func (op OpType) String() string {
	switch op {
	case Create:
		return "Create"
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	case Rename:
		return "Rename"
	case Overflow:
		return "Overflow"
	case Error:
		return "Error"
	}
	return fmt.Sprintf("OpType(%d)", int(op))
}

// Event is a generalisation of events sent from the watcher to its consumer.
type Event struct {
	Op       OpType
	Pathname string
	// NewPathname is the destination of a Rename, when the platform reports
	// it.  Otherwise the destination arrives as a separate Create.
	NewPathname string
	Err         error
}

func (e Event) String() string {
	switch e.Op {
	case Rename:
		if e.NewPathname != "" {
			return fmt.Sprintf("%s %q -> %q", e.Op, e.Pathname, e.NewPathname)
		}
	case Overflow:
		return e.Op.String()
	case Error:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Op, e.Pathname)
}

// Watcher describes an interface for recursive filesystem watching.
type Watcher interface {
	// Watch registers a recursive watch on the directory root.
	Watch(root string) error
	// Events returns the channel events are delivered on.  It is closed
	// after Close, or if the watcher dies.
	Events() <-chan Event
	Close() error
}

// LimitError reports that the platform cannot establish or sustain a watch,
// as opposed to the watch target being wrong.
type LimitError struct {
	Path string
	Err  error
}

func (e *LimitError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("watching unavailable: %s", e.Err)
	}
	return fmt.Sprintf("cannot watch %q: %s", e.Path, e.Err)
}

func (e *LimitError) Unwrap() error { return e.Err }

// classify wraps err in a LimitError if it is a capability failure.  Errors
// from directories below the root also count permission failures, since
// the subtree simply cannot be watched.
func classify(path string, err error, subtree bool) error {
	if err == nil {
		return nil
	}
	if isLimitErrno(err) || (subtree && errors.Is(err, os.ErrPermission)) {
		return &LimitError{Path: path, Err: err}
	}
	return errors.Wrapf(err, "failed to watch %q", path)
}
