// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"io/fs"
	"os"

	"github.com/golang/glog"
	"github.com/google/dirtytracker/internal/watcher"
	"github.com/pkg/errors"
)

// establish creates a watcher and registers a recursive watch on root.
// Failures due to platform limits come back as a *watcher.LimitError; the
// caller's mistakes as ErrInvalidRoot; anything else as ErrSetupFailed.
func establish(newWatcher func() (watcher.Watcher, error), root string) (watcher.Watcher, error) {
	fi, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrInvalidRoot, "%q", root)
		}
		return nil, errors.Wrapf(ErrSetupFailed, "%q: %s", root, err)
	}
	if !fi.IsDir() {
		return nil, errors.Wrapf(ErrInvalidRoot, "%q is not a directory", root)
	}

	w, err := newWatcher()
	if err != nil {
		return nil, setupError(root, err)
	}
	if err := w.Watch(root); err != nil {
		if cerr := w.Close(); cerr != nil {
			glog.Warningf("Failed to release watcher on %q: %s", root, cerr)
		}
		return nil, setupError(root, err)
	}
	return w, nil
}

func setupError(root string, err error) error {
	var le *watcher.LimitError
	if errors.As(err, &le) {
		return err
	}
	// The root went away between the stat and the watch.
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrInvalidRoot, "%q: %s", root, err)
	}
	return errors.Wrapf(ErrSetupFailed, "%q: %s", root, err)
}
