// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/dirtytracker/internal/testutil"
	"github.com/google/dirtytracker/internal/watcher"
	"github.com/pkg/errors"
)

func TestWriteStatusJSON(t *testing.T) {
	tr, w, root := newFakeTracker(t)
	a := filepath.Join(root, "a")
	w.InjectCreate(a)
	expectPaths(t, tr, []string{a})

	var buf bytes.Buffer
	testutil.FatalIfErr(t, tr.WriteStatusJSON(&buf))
	var got map[string]interface{}
	testutil.FatalIfErr(t, json.Unmarshal(buf.Bytes(), &got))
	want := map[string]interface{}{
		"root":  root,
		"state": "dirty",
		"paths": []interface{}{a},
	}
	testutil.ExpectNoDiff(t, want, got)
}

func TestWriteStatusJSONUnknown(t *testing.T) {
	root := testutil.TestTempDir(t)
	w := watcher.NewFakeWatcher()
	w.FailWatch(&watcher.LimitError{Path: root, Err: errors.New("too many watches")})
	tr, err := New(context.Background(), root, withWatcher{w})
	testutil.FatalIfErr(t, err)
	defer tr.Close()

	var buf bytes.Buffer
	testutil.FatalIfErr(t, tr.WriteStatusJSON(&buf))
	if !strings.Contains(buf.String(), `"paths": null`) {
		t.Errorf("unknown status should have null paths: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"state": "unknown"`) {
		t.Errorf("unknown status missing state: %s", buf.String())
	}
}

func TestWriteStatusHTML(t *testing.T) {
	tr, w, root := newFakeTracker(t)
	a := filepath.Join(root, "a<b>")
	w.InjectCreate(a)
	expectPaths(t, tr, []string{a})

	var buf bytes.Buffer
	testutil.FatalIfErr(t, tr.WriteStatusHTML(&buf))
	out := buf.String()
	if !strings.Contains(out, "<b>dirty</b>") {
		t.Errorf("status missing state: %s", out)
	}
	if !strings.Contains(out, "a&lt;b&gt;") {
		t.Errorf("status missing escaped path: %s", out)
	}
}
