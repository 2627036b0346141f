// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build !unix && !windows

package watcher

import (
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

func isLimitErrno(err error) bool {
	return errors.Is(err, fsnotify.ErrUnsupported)
}
