// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"expvar"
	"testing"
	"time"

	"github.com/golang/glog"
)

// TestGetExpvar fetches the expvar metric `name`, and returns the expvar.
// Callers are responsible for type assertions on the returned value.
func TestGetExpvar(tb testing.TB, name string) expvar.Var {
	tb.Helper()
	v := expvar.Get(name)
	glog.Infof("Var %q is %v", name, v)
	return v
}

func intValue(v expvar.Var) int64 {
	if v == nil {
		return 0
	}
	return v.(*expvar.Int).Value()
}

// ExpectExpvarDeltaWithDeadline returns a deferrable function which tests if
// the expvar Int `name` has changed by want within the default deadline.
// The starting value is read before returning.
func ExpectExpvarDeltaWithDeadline(tb testing.TB, name string, want int64) func() {
	tb.Helper()
	start := intValue(TestGetExpvar(tb, name))
	return expectDelta(tb, name, start, want, func() int64 {
		return intValue(TestGetExpvar(tb, name))
	})
}

// ExpectMapExpvarDeltaWithDeadline is ExpectExpvarDeltaWithDeadline for
// the key `key` of the expvar Map `name`.
func ExpectMapExpvarDeltaWithDeadline(tb testing.TB, name, key string, want int64) func() {
	tb.Helper()
	get := func() int64 {
		return intValue(TestGetExpvar(tb, name).(*expvar.Map).Get(key))
	}
	return expectDelta(tb, name+"["+key+"]", get(), want, get)
}

func expectDelta(tb testing.TB, name string, start, want int64, get func() int64) func() {
	return func() {
		tb.Helper()
		ok, err := DoOrTimeout(func() (bool, error) {
			return get()-start == want, nil
		}, defaultDoOrTimeoutDeadline, 10*time.Millisecond)
		FatalIfErr(tb, err)
		if !ok {
			now := get()
			tb.Errorf("Did not see %s have delta by deadline: got %v - %v = %d, want %d", name, now, start, now-start, want)
		}
	}
}
