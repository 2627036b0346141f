// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package dirtystate holds the tri-state verdict of a tracker and the set of
// paths that have changed since tracking began.
package dirtystate

import (
	"sort"
	"sync"
)

// State is the trustworthiness verdict of a tracker.
type State int

const (
	// Clean means no change has been observed.
	Clean State = iota
	// Dirty means at least one change has been observed.
	Dirty
	// Unknown means changes may have been missed.  Unknown is terminal.
	Unknown
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

// MarshalText encodes the state as its name, for JSON status output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Store is a concurrency-safe container for a State and its dirty path set.
// The set is never handed out; readers only get copies.
type Store struct {
	mu    sync.RWMutex // protects following fields
	state State
	paths map[string]struct{} // nil once Unknown
}

// New returns a Store in the Clean state.
func New() *Store {
	return &Store{
		state: Clean,
		paths: make(map[string]struct{}),
	}
}

// MarkDirty adds path to the set, moving Clean to Dirty.  It is a no-op once
// the store is Unknown.  It returns true if path was not already present.
func (s *Store) MarkDirty(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unknown {
		return false
	}
	if _, ok := s.paths[path]; ok {
		return false
	}
	s.paths[path] = struct{}{}
	s.state = Dirty
	return true
}

// MarkUnknown discards the set and moves to Unknown.  It returns true if
// this call performed the transition.
func (s *Store) MarkUnknown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unknown {
		return false
	}
	s.state = Unknown
	s.paths = nil
	return true
}

// Snapshot returns the state and a sorted copy of the dirty paths, read
// together.  The slice is nil exactly when the state is Unknown, and
// non-nil (possibly empty) otherwise.
func (s *Store) Snapshot() (State, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Unknown {
		return Unknown, nil
	}
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return s.state, paths
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Len returns the number of dirty paths, or -1 when Unknown.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Unknown {
		return -1
	}
	return len(s.paths)
}
