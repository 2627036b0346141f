// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/golang/glog"
)

// WriteString writes str to f, and for regular files syncs it to disk so
// that the write has happened, and been reported to any watcher, by the time
// it returns.
func WriteString(tb testing.TB, f io.StringWriter, str string) int {
	tb.Helper()
	n, err := f.WriteString(str)
	FatalIfErr(tb, err)
	glog.V(2).Infof("Wrote %d bytes", n)
	v, ok := f.(*os.File)
	if !ok {
		return n
	}
	fi, err := v.Stat()
	FatalIfErr(tb, err)
	if fi.Mode().IsRegular() {
		FatalIfErr(tb, v.Sync())
	}
	return n
}
