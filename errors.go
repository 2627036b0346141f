// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import "github.com/pkg/errors"

var (
	// ErrInvalidRoot is returned by New when the root is missing or is not
	// a directory.
	ErrInvalidRoot = errors.New("root is not an existing directory")
	// ErrSetupFailed is returned by New when the watch could not be set up
	// for a reason other than platform watch limits.
	ErrSetupFailed = errors.New("failed to set up watch")
	// ErrClosed is returned by Sync once the tracker is closed.
	ErrClosed = errors.New("tracker is closed")
)
