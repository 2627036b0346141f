// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package server runs a Tracker as a daemon, publishing its state over HTTP.
package server

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/google/dirtytracker"
	"github.com/google/dirtytracker/internal/waker"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opencensus.io/zpages"
	"golang.org/x/sync/errgroup"
)

var reportsTotal = expvar.NewInt("server_reports_total")

// Server contains the state of the main dirtytracker program.
type Server struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tracker *dirtytracker.Tracker

	reg *prometheus.Registry

	h        *http.Server
	listener net.Listener

	webquit     chan struct{} // Channel to signal shutdown from web UI
	webquitOnce sync.Once
	closeQuit   chan struct{} // Channel to signal shutdown from code
	closeOnce   sync.Once     // Ensure shutdown happens only once

	bindAddress    string    // address to bind HTTP server
	bindUnixSocket string    // path of the UNIX socket to bind HTTP server
	buildInfo      BuildInfo // go build information

	reportWaker        waker.Waker // Wake to log the tracker state
	httpDebugEndpoints bool        // if set, serve /debug and /tracez

	oneShot       bool          // if set, Run prints the state once and exits
	oneShotWait   time.Duration // how long to track before printing
	oneShotOutput io.Writer
}

// New creates a Server that publishes the state of t.  The Server owns t
// and closes it on shutdown.
func New(ctx context.Context, t *dirtytracker.Tracker, options ...Option) (*Server, error) {
	s := &Server{
		tracker:       t,
		webquit:       make(chan struct{}),
		closeQuit:     make(chan struct{}),
		h:             &http.Server{ReadHeaderTimeout: 10 * time.Second},
		reg:           prometheus.NewRegistry(),
		oneShotOutput: os.Stdout,
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	expvarDescs := map[string]*prometheus.Desc{
		// internal/watcher/fs_watcher.go
		"watcher_events_total":        prometheus.NewDesc("watcher_events_total", "number of events received from the platform watcher", nil, nil),
		"watcher_errors_total":        prometheus.NewDesc("watcher_errors_total", "number of errors received from the platform watcher", nil, nil),
		"watcher_watches_added_total": prometheus.NewDesc("watcher_watches_added_total", "number of directories added to the platform watcher", nil, nil),
		// dispatch.go
		"tracker_events_total":         prometheus.NewDesc("tracker_events_total", "number of events applied by the tracker", nil, nil),
		"tracker_events_dropped_total": prometheus.NewDesc("tracker_events_dropped_total", "number of events with no path inside the root", nil, nil),
		"tracker_unknown_total":        prometheus.NewDesc("tracker_unknown_total", "number of trackers that became unknown, by reason", []string{"reason"}, nil),
		// internal/server/server.go
		"server_reports_total": prometheus.NewDesc("server_reports_total", "number of periodic state reports logged", nil, nil),
	}
	s.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		trackerCollector{t})
	// Prefix all expvar metrics with 'dirtytracker_'
	prometheus.WrapRegistererWithPrefix("dirtytracker_", s.reg).MustRegister(
		collectors.NewExpvarCollector(expvarDescs))
	if err := s.SetOption(options...); err != nil {
		s.cancel()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		return nil, err
	}

	if err := s.buildInfo.register(s.reg); err != nil {
		s.cancel()
		return nil, errors.Wrap(err, "failed to register build info")
	}
	return s, nil
}

// SetOption takes one or more option functions and applies them in order to Server.
func (s *Server) SetOption(options ...Option) error {
	for _, option := range options {
		if err := option.apply(s); err != nil {
			return err
		}
	}
	return nil
}

// Serve begins the webserver and awaits a shutdown instruction.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.Errorf("No bind address provided.")
	}
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.HandleFunc("/json", s.handleJSON)
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/quitquitquit", s.quitHandler)
	if s.httpDebugEndpoints {
		mux.Handle("/debug/vars", expvar.Handler())
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		zpages.Handle(mux, "/")
	}
	s.h.Handler = mux

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		if s.bindAddress != "" {
			glog.Infof("Listening on %s", s.listener.Addr())
		} else {
			glog.Infof("Listening on UNIX socket %s", s.bindUnixSocket)
		}
		err := s.h.Serve(s.listener)
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	})
	g.Go(func() error {
		s.reportLoop(ctx)
		return nil
	})
	s.waitForShutdown(ctx)
	return g.Wait()
}

// reportLoop logs the tracker state each time the report waker fires.
func (s *Server) reportLoop(ctx context.Context) {
	if s.reportWaker == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.reportWaker.Wake():
			s.report()
		}
	}
}

func (s *Server) report() {
	reportsTotal.Add(1)
	state, paths := s.tracker.Snapshot()
	if state == dirtytracker.Unknown {
		glog.Infof("%q is unknown; a full rescan is needed", s.tracker.Root())
		return
	}
	glog.Infof("%q is %s with %d changed paths", s.tracker.Root(), state, len(paths))
}

// WaitForShutdown handles shutdown requests from the system or the UI.
func (s *Server) WaitForShutdown() {
	s.waitForShutdown(s.ctx)
}

func (s *Server) waitForShutdown(ctx context.Context) {
	n := make(chan os.Signal, 1)
	signal.Notify(n, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(n)
	select {
	case <-ctx.Done():
		glog.Info("External shutdown, exiting...")
	case <-n:
		glog.Info("Received SIGTERM, exiting...")
	case <-s.webquit:
		glog.Info("Received Quit from HTTP, exiting...")
	case <-s.closeQuit:
		glog.Info("Received quit internally, exiting...")
	}
	if err := s.Close(false); err != nil {
		glog.Warning(err)
	}
}

// Close handles the graceful shutdown of this dirtytracker instance, ensuring
// that it only occurs once.  If fast is true, then the http server is shutdown
// without waiting.
func (s *Server) Close(fast bool) error {
	var err error
	s.closeOnce.Do(func() {
		glog.Info("Shutdown requested.")
		close(s.closeQuit)
		s.cancel()
		if cerr := s.tracker.Close(); cerr != nil {
			err = errors.Wrap(cerr, "tracker close failed")
		}
		if s.h != nil {
			glog.Info("Shutting down http server")
			if fast {
				s.h.Close()
			} else {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if herr := s.h.Shutdown(ctx); herr != nil {
					glog.Error(herr)
				}
				cancel()
			}
		}
		if s.listener != nil {
			// Already closed if Serve ran.
			_ = s.listener.Close()
		}
		glog.Info("END OF LINE")
	})
	return err
}

// Run starts the Server's primary function.  In one-shot mode it waits,
// brings the tracker up to date, prints its state and returns; otherwise it
// serves HTTP until shut down.
func (s *Server) Run() error {
	if s.oneShot {
		return s.runOneShot()
	}
	return s.Serve()
}

func (s *Server) runOneShot() error {
	defer func() {
		if err := s.Close(true); err != nil {
			glog.Warning(err)
		}
	}()
	if s.oneShotWait > 0 {
		glog.Infof("Tracking %q for %s", s.tracker.Root(), s.oneShotWait)
		select {
		case <-time.After(s.oneShotWait):
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	// Without write access to the root the state may lag slightly.
	if err := s.tracker.Sync(ctx); err != nil {
		glog.Warningf("Failed to sync tracker on %q: %s", s.tracker.Root(), err)
	}
	if err := s.tracker.WriteStatusJSON(s.oneShotOutput); err != nil {
		return errors.Wrap(err, "failed to write state")
	}
	return nil
}

// Addr returns the address the server is listening on, or "none".
func (s *Server) Addr() string {
	if s.listener == nil {
		return "none"
	}
	return s.listener.Addr().String()
}

// String is used in log messages.
func (s *Server) String() string {
	return fmt.Sprintf("dirtytracker server for %q on %s", s.tracker.Root(), s.Addr())
}
