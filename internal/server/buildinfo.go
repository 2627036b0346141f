// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package server

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"
)

// BuildInfo records the compile-time information for use when reporting the
// dirtytracker version.  The linker fills it in via cmd/dirtytracker.
type BuildInfo struct {
	Branch   string
	Version  string
	Revision string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("dirtytracker version %s git revision %s (branch %s) go version %s go arch %s go os %s",
		b.Version, b.Revision, b.Branch, runtime.Version(), runtime.GOARCH, runtime.GOOS)
}

// register publishes b as the dirtytracker_build_info metric on reg.
func (b BuildInfo) register(reg prometheus.Registerer) error {
	version.Branch = b.Branch
	version.Version = b.Version
	version.Revision = b.Revision
	return reg.Register(versioncollector.NewCollector("dirtytracker"))
}
