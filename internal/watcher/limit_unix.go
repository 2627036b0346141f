// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build unix

package watcher

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// limitErrnos are returned by inotify and kqueue when a watch cannot be
// registered for reasons of platform capacity or support.
var limitErrnos = []error{
	unix.ENOSPC, // inotify max_user_watches
	unix.EMFILE, // inotify max_user_instances, or kqueue fd per directory
	unix.ENFILE,
	unix.ENOMEM,
	unix.ENOSYS,
	unix.EOPNOTSUPP,
}

func isLimitErrno(err error) bool {
	for _, errno := range limitErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
