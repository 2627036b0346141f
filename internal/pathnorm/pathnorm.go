// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package pathnorm turns watcher events into canonical absolute paths under
// a watched root.
package pathnorm

import (
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/dirtytracker/internal/watcher"
	"github.com/pkg/errors"
)

// Normalizer maps event pathnames onto the watched root.
type Normalizer struct {
	root string
}

// New returns a Normalizer for root, which is made absolute and cleaned.
func New(root string) (*Normalizer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to lookup absolute path of %q", root)
	}
	return &Normalizer{root: abs}, nil
}

// Root returns the absolute watched root.
func (n *Normalizer) Root() string {
	return n.root
}

// Paths returns the paths touched by e.  A rename yields both its source and
// its destination.  Pathnames that are empty, unrepresentable, or outside the
// root are dropped, so the result may be shorter than the event's path count.
func (n *Normalizer) Paths(e watcher.Event) []string {
	var names []string
	switch e.Op {
	case watcher.Create, watcher.Update, watcher.Delete:
		names = []string{e.Pathname}
	case watcher.Rename:
		names = []string{e.Pathname}
		if e.NewPathname != "" {
			names = append(names, e.NewPathname)
		}
	default:
		return nil
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p, ok := n.Canonical(name)
		if !ok {
			glog.V(2).Infof("Dropping path %q from %s", name, e)
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// Canonical returns the cleaned absolute form of name, and whether it is at
// or below the root.  Relative names are taken relative to the root.
func (n *Normalizer) Canonical(name string) (string, bool) {
	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return "", false
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(n.root, name)
	}
	name = filepath.Clean(name)
	if _, ok := n.rel(name); !ok {
		return "", false
	}
	return name, true
}

// Rel returns path relative to the root; the root itself is ".".
func (n *Normalizer) Rel(path string) (string, bool) {
	return n.rel(filepath.Clean(path))
}

func (n *Normalizer) rel(path string) (string, bool) {
	rel, err := filepath.Rel(n.root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
