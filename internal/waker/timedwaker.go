// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package waker

import (
	"context"
	"time"
)

// NewTimed returns a Waker that wakes its callers every interval until ctx is
// cancelled.
func NewTimed(ctx context.Context, interval time.Duration) Waker {
	b := newBroadcaster()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.broadcast()
			}
		}
	}()
	return b
}
