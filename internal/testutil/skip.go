// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"os"
	"testing"
)

// SkipIfShort skips tests that touch the real filesystem watcher.
func SkipIfShort(tb testing.TB) {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping test in -short mode")
	}
}

// SkipIfRoot skips tests that rely on permission checks, which root bypasses.
func SkipIfRoot(tb testing.TB) {
	tb.Helper()
	if os.Geteuid() == 0 {
		tb.Skip("Skipping test when run as root")
	}
}
