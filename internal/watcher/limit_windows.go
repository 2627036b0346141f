// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build windows

package watcher

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var limitErrnos = []error{
	windows.ERROR_TOO_MANY_OPEN_FILES,
	windows.ERROR_NOT_ENOUGH_MEMORY,
	windows.ERROR_NOT_SUPPORTED,
	windows.ERROR_INVALID_FUNCTION, // ReadDirectoryChangesW on some network shares
}

func isLimitErrno(err error) bool {
	for _, errno := range limitErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
