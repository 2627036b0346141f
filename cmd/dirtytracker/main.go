// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Command dirtytracker watches a directory and serves the set of changed
// paths over HTTP, or prints it once with -one_shot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/google/dirtytracker"
	"github.com/google/dirtytracker/internal/server"
	"github.com/google/dirtytracker/internal/waker"
	"go.opencensus.io/trace"
)

var (
	root       = flag.String("root", "", "Directory to track changes beneath.")
	port       = flag.String("port", "3904", "HTTP port to listen on.")
	address    = flag.String("address", "", "Host or IP address on which to bind HTTP listener")
	unixSocket = flag.String("unix_socket", "", "UNIX Socket to listen on")

	version = flag.Bool("version", false, "Print dirtytracker version information.")

	// Tracker behaviour flags.
	bufferSize = flag.Uint("buffer_size", 0, "Size of the platform watcher's event buffer.  Zero uses the platform default.")

	// Ops flags.
	reportInterval = flag.Duration("report_interval", time.Minute, "Interval between logging the tracker state; zero disables the report.")
	oneShot        = flag.Bool("one_shot", false, "Track changes for -one_shot_wait, print the state as JSON and exit. This is a debugging flag only, not for production use.")
	oneShotWait    = flag.Duration("one_shot_wait", 0, "How long to track changes before printing with -one_shot.")

	// Debugging flags.
	blockProfileRate     = flag.Int("block_profile_rate", 0, "Nanoseconds of block time before goroutine blocking events reported. 0 turns off.  See https://golang.org/pkg/runtime/#SetBlockProfileRate")
	mutexProfileFraction = flag.Int("mutex_profile_fraction", 0, "Fraction of mutex contention events reported.  0 turns off.  See http://golang.org/pkg/runtime/#SetMutexProfileFraction")
	httpDebugEndpoints   = flag.Bool("http_debugging_endpoint", true, "Enable debugging endpoints (/debug/*, /tracez).")

	// Tracing.
	jaegerEndpoint    = flag.String("jaeger_endpoint", "", "If set, collector endpoint URL of jaeger thrift service")
	traceSamplePeriod = flag.Int("trace_sample_period", 0, "Sample period for traces.  If non-zero, every nth trace will be sampled.")
)

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker when compiled
	// with `make'.  The defaults here indicate that the user did not use
	// `make' as instructed.
	Branch   = "invalid:-use-make-to-build"
	Version  = "invalid:-use-make-to-build"
	Revision = "invalid:-use-make-to-build"
)

func main() {
	buildInfo := server.BuildInfo{
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(buildInfo.String())
		os.Exit(0)
	}
	glog.Info(buildInfo.String())
	glog.Infof("Commandline: %q", os.Args)
	if len(flag.Args()) > 0 {
		glog.Exitf("Too many extra arguments specified: %q\n(use -root to name the directory to track.)", flag.Args())
	}
	if *root == "" {
		glog.Exitf("dirtytracker requires a directory to watch; please use the flag -root to specify it.")
	}
	if *blockProfileRate > 0 {
		glog.Infof("Setting block profile rate to %d", *blockProfileRate)
		runtime.SetBlockProfileRate(*blockProfileRate)
	}
	if *mutexProfileFraction > 0 {
		glog.Infof("Setting mutex profile fraction to %d", *mutexProfileFraction)
		runtime.SetMutexProfileFraction(*mutexProfileFraction)
	}
	if *traceSamplePeriod > 0 {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(1 / float64(*traceSamplePeriod))})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigint
		glog.Infof("Received %+v, exiting...", sig)
		cancel()
	}()

	opts := []server.Option{
		server.SetBuildInfo(buildInfo),
	}
	if *jaegerEndpoint != "" {
		opts = append(opts, server.JaegerReporter(*jaegerEndpoint))
	}
	if *oneShot {
		opts = append(opts, server.OneShot(*oneShotWait))
	} else if *unixSocket == "" {
		opts = append(opts, server.BindAddress(*address, *port))
	} else {
		opts = append(opts, server.BindUnixSocket(*unixSocket))
	}
	if *reportInterval > 0 {
		opts = append(opts, server.ReportWaker(waker.NewTimed(ctx, *reportInterval)))
	}
	if *httpDebugEndpoints {
		opts = append(opts, server.HTTPDebugEndpoints)
	}

	t, err := dirtytracker.New(ctx, *root, dirtytracker.BufferSize(*bufferSize))
	if err != nil {
		glog.Exitf("Failed to track %q: %s", *root, err)
	}
	s, err := server.New(ctx, t, opts...)
	if err != nil {
		glog.Error(err)
		t.Close()
		cancel()
		os.Exit(1) //nolint:gocritic // false positive
	}
	if err := s.Run(); err != nil {
		glog.Error(err)
		cancel()
		os.Exit(1) //nolint:gocritic // false positive
	}
}
