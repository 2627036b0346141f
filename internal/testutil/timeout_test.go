// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDoOrTimeout(t *testing.T) {
	SkipIfShort(t)

	for _, tc := range []struct {
		name     string
		succeeds int // number of calls before do returns true; -1 for never
		deadline time.Duration
		wantOK   bool
	}{
		{"never", -1, 10 * time.Millisecond, false},
		{"after five", 5, 100 * time.Millisecond, true},
		{"immediately", 0, 10 * time.Millisecond, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			ok, err := DoOrTimeout(func() (bool, error) {
				calls++
				return tc.succeeds >= 0 && calls > tc.succeeds, nil
			}, tc.deadline, time.Millisecond)
			if ok != tc.wantOK || err != nil {
				t.Errorf("DoOrTimeout() = %v, %v, want %v, nil", ok, err, tc.wantOK)
			}
		})
	}
}

func TestDoOrTimeoutError(t *testing.T) {
	boom := errors.New("boom")
	ok, err := DoOrTimeout(func() (bool, error) {
		return false, boom
	}, time.Second, time.Millisecond)
	if ok {
		t.Error("DoOrTimeout() succeeded on error")
	}
	ExpectErrorIs(t, err, boom)
}

func TestExpectEventually(t *testing.T) {
	start := time.Now()
	ExpectEventually(t, "20ms to pass", func() bool {
		return time.Since(start) > 20*time.Millisecond
	})
}
