// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package pathnorm

import (
	"path/filepath"
	"testing"

	"github.com/google/dirtytracker/internal/testutil"
	"github.com/google/dirtytracker/internal/watcher"
)

func TestPaths(t *testing.T) {
	root := testutil.TestTempDir(t)
	n, err := New(root)
	testutil.FatalIfErr(t, err)

	in := func(elem ...string) string {
		return filepath.Join(append([]string{root}, elem...)...)
	}
	outside := filepath.Join(filepath.Dir(root), "elsewhere")

	for _, tc := range []struct {
		name  string
		event watcher.Event
		want  []string
	}{
		{"create", watcher.Event{Op: watcher.Create, Pathname: in("f")}, []string{in("f")}},
		{"update", watcher.Event{Op: watcher.Update, Pathname: in("d", "f")}, []string{in("d", "f")}},
		{"delete", watcher.Event{Op: watcher.Delete, Pathname: in("f")}, []string{in("f")}},
		{"rename pair", watcher.Event{Op: watcher.Rename, Pathname: in("a"), NewPathname: in("b")}, []string{in("a"), in("b")}},
		{"rename source only", watcher.Event{Op: watcher.Rename, Pathname: in("a")}, []string{in("a")}},
		{"rename out of root", watcher.Event{Op: watcher.Rename, Pathname: in("a"), NewPathname: outside}, []string{in("a")}},
		{"unclean", watcher.Event{Op: watcher.Update, Pathname: root + "/d/../f"}, []string{in("f")}},
		{"relative", watcher.Event{Op: watcher.Update, Pathname: "d/f"}, []string{in("d", "f")}},
		{"root itself", watcher.Event{Op: watcher.Update, Pathname: root}, []string{root}},
		{"outside", watcher.Event{Op: watcher.Create, Pathname: outside}, []string{}},
		{"sibling prefix", watcher.Event{Op: watcher.Create, Pathname: root + "x"}, []string{}},
		{"escape", watcher.Event{Op: watcher.Create, Pathname: "../f"}, []string{}},
		{"empty", watcher.Event{Op: watcher.Create}, []string{}},
		{"nul", watcher.Event{Op: watcher.Create, Pathname: in("a\x00b")}, []string{}},
		{"overflow", watcher.Event{Op: watcher.Overflow}, nil},
		{"error", watcher.Event{Op: watcher.Error}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			testutil.ExpectNoDiff(t, tc.want, n.Paths(tc.event))
		})
	}
}

func TestRel(t *testing.T) {
	root := testutil.TestTempDir(t)
	n, err := New(root)
	testutil.FatalIfErr(t, err)

	for _, tc := range []struct {
		path   string
		want   string
		wantOK bool
	}{
		{root, ".", true},
		{filepath.Join(root, "a", "b"), filepath.Join("a", "b"), true},
		{filepath.Dir(root), "", false},
	} {
		got, ok := n.Rel(tc.path)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Rel(%q) = %q, %v; want %q, %v", tc.path, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestNewRelativeRoot(t *testing.T) {
	testutil.Chdir(t, testutil.TestTempDir(t))
	n, err := New("watched")
	testutil.FatalIfErr(t, err)
	if !filepath.IsAbs(n.Root()) {
		t.Errorf("Root() = %q, want an absolute path", n.Root())
	}
}
