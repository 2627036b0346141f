// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"testing"
	"time"

	"github.com/golang/glog"
)

// DoOrTimeout calls do every interval until it returns true or an error, or
// until deadline passes, in which case it returns false and a nil error.
func DoOrTimeout(do func() (bool, error), deadline, interval time.Duration) (bool, error) {
	timeout := time.After(deadline)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-timeout:
			return false, nil
		case <-ticker.C:
			glog.V(2).Infof("tick")
			ok, err := do()
			glog.V(2).Infof("ok, err: %v %v", ok, err)
			if err != nil {
				return false, err
			} else if ok {
				return true, nil
			}
		}
	}
}

const defaultDoOrTimeoutDeadline = 10 * time.Second

// ExpectEventually polls cond until it holds, failing the test if the
// default deadline passes first.
func ExpectEventually(tb testing.TB, what string, cond func() bool) {
	tb.Helper()
	ok, err := DoOrTimeout(func() (bool, error) { return cond(), nil }, defaultDoOrTimeoutDeadline, 10*time.Millisecond)
	FatalIfErr(tb, err)
	if !ok {
		tb.Fatalf("timed out waiting for %s", what)
	}
}
