// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package waker

import (
	"github.com/golang/glog"
)

// WakeFunc triggers a wakeup of every routine blocked on the Waker.
type WakeFunc func()

// NewTest returns a Waker that only wakes when the returned WakeFunc is
// called, for driving idle loops step by step in tests.  name appears in
// debug logs.
func NewTest(name string) (Waker, WakeFunc) {
	b := newBroadcaster()
	return b, func() {
		glog.InfoDepthf(1, "TestWaker(%s) broadcasting wake", name)
		b.broadcast()
	}
}

// alwaysWaker never blocks the wakee.
type alwaysWaker struct {
	wake chan struct{}
}

// NewTestAlways returns a Waker whose channel is always closed.
func NewTestAlways() Waker {
	w := &alwaysWaker{
		wake: make(chan struct{}),
	}
	close(w.wake)
	return w
}

func (w *alwaysWaker) Wake() <-chan struct{} {
	return w.wake
}
