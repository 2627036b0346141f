// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/dirtytracker"
	"github.com/google/dirtytracker/internal/testutil"
	"github.com/google/dirtytracker/internal/waker"
)

func newTracker(tb testing.TB) *dirtytracker.Tracker {
	tb.Helper()
	root := testutil.TestTempDir(tb)
	tr, err := dirtytracker.New(context.Background(), root)
	testutil.FatalIfErr(tb, err)
	return tr
}

// startServer creates a Server on a local TCP port and runs it.  The returned
// function stops the server and checks that Run returned cleanly.
func startServer(tb testing.TB, tr *dirtytracker.Tracker, options ...Option) (*Server, func()) {
	tb.Helper()
	options = append(options, BindAddress("localhost", "0"), SetBuildInfo(BuildInfo{Version: "test"}))
	s, err := New(context.Background(), tr, options...)
	testutil.FatalIfErr(tb, err)

	errc := make(chan error, 1)
	go func() {
		errc <- s.Run()
	}()
	return s, func() {
		tb.Helper()
		testutil.FatalIfErr(tb, s.Close(false))
		select {
		case err := <-errc:
			testutil.FatalIfErr(tb, err)
		case <-time.After(6 * time.Second):
			tb.Fatal("timeout waiting for shutdown")
		}
	}
}

func get(tb testing.TB, s *Server, path string) (int, string) {
	tb.Helper()
	var resp *http.Response
	testutil.ExpectEventually(tb, "server listening", func() bool {
		var err error
		resp, err = http.Get("http://" + s.Addr() + path)
		return err == nil
	})
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	testutil.FatalIfErr(tb, err)
	return resp.StatusCode, string(body)
}

func TestServeJSON(t *testing.T) {
	tr := newTracker(t)
	s, stop := startServer(t, tr)
	defer stop()

	code, body := get(t, s, "/json")
	if code != http.StatusOK {
		t.Fatalf("GET /json = %d, want 200", code)
	}
	var got struct {
		Root  string   `json:"root"`
		State string   `json:"state"`
		Paths []string `json:"paths"`
	}
	testutil.FatalIfErr(t, json.Unmarshal([]byte(body), &got))
	if got.Root != tr.Root() {
		t.Errorf("root = %q, want %q", got.Root, tr.Root())
	}
	if got.State != tr.State().String() {
		t.Errorf("state = %q, want %q", got.State, tr.State())
	}
}

func TestServeStatusPage(t *testing.T) {
	tr := newTracker(t)
	s, stop := startServer(t, tr)
	defer stop()

	_, body := get(t, s, "/")
	for _, want := range []string{"dirtytracker on " + s.Addr(), "dirtytracker version test", tr.Root()} {
		if !strings.Contains(body, want) {
			t.Errorf("status page missing %q:\n%s", want, body)
		}
	}
}

func TestServeMetrics(t *testing.T) {
	tr := newTracker(t)
	s, stop := startServer(t, tr)
	defer stop()

	_, body := get(t, s, "/metrics")
	for _, want := range []string{
		"dirtytracker_state{",
		"dirtytracker_build_info{",
		"dirtytracker_tracker_events_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestDebugEndpoints(t *testing.T) {
	tr := newTracker(t)
	s, stop := startServer(t, tr, HTTPDebugEndpoints)
	defer stop()

	code, body := get(t, s, "/debug/vars")
	if code != http.StatusOK {
		t.Fatalf("GET /debug/vars = %d, want 200", code)
	}
	if !strings.Contains(body, "tracker_events_total") {
		t.Errorf("debug/vars missing tracker counters:\n%s", body)
	}
}

func TestQuitQuitQuit(t *testing.T) {
	tr := newTracker(t)
	s, err := New(context.Background(), tr, BindAddress("localhost", "0"))
	testutil.FatalIfErr(t, err)
	errc := make(chan error, 1)
	go func() {
		errc <- s.Run()
	}()

	code, _ := get(t, s, "/quitquitquit")
	if code != http.StatusMethodNotAllowed {
		t.Errorf("GET /quitquitquit = %d, want 405", code)
	}
	resp, err := http.Post("http://"+s.Addr()+"/quitquitquit", "text/plain", nil)
	testutil.FatalIfErr(t, err)
	resp.Body.Close()

	select {
	case err := <-errc:
		testutil.FatalIfErr(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not quit")
	}
	if tr.Sync(context.Background()) != dirtytracker.ErrClosed {
		t.Errorf("tracker not closed by server shutdown")
	}
}

func TestReportLoop(t *testing.T) {
	w, wake := waker.NewTest(t.Name())
	tr := newTracker(t)
	_, stop := startServer(t, tr, ReportWaker(w))
	defer stop()

	start := reportsTotal.Value()
	// The loop may not be waiting yet, so keep waking until it reports.
	testutil.ExpectEventually(t, "a report", func() bool {
		wake()
		return reportsTotal.Value() > start
	})
}

func TestUnixSocket(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no UNIX sockets")
	}
	tr := newTracker(t)
	sock := filepath.Join(testutil.TestTempDir(t), "dirtytracker.sock")
	s, err := New(context.Background(), tr, BindUnixSocket(sock))
	testutil.FatalIfErr(t, err)
	errc := make(chan error, 1)
	go func() {
		errc <- s.Run()
	}()
	defer func() {
		testutil.FatalIfErr(t, s.Close(false))
		testutil.FatalIfErr(t, <-errc)
	}()

	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", sock)
		},
	}}
	resp, err := client.Get("http://unix/json")
	testutil.FatalIfErr(t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /json over UNIX socket = %d, want 200", resp.StatusCode)
	}
}

func TestBindTwice(t *testing.T) {
	tr := newTracker(t)
	defer tr.Close()
	sock := filepath.Join(testutil.TestTempDir(t), "dirtytracker.sock")
	_, err := New(context.Background(), tr, BindAddress("localhost", "0"), BindUnixSocket(sock))
	if err == nil {
		t.Error("New with two bind addresses succeeded")
	}
}

func TestServeWithoutAddress(t *testing.T) {
	tr := newTracker(t)
	s, err := New(context.Background(), tr)
	testutil.FatalIfErr(t, err)
	defer s.Close(true)
	if err := s.Serve(); err == nil {
		t.Error("Serve without a bind address succeeded")
	}
}

func TestOneShot(t *testing.T) {
	testutil.SkipIfShort(t)
	tr := newTracker(t)
	f := filepath.Join(tr.Root(), "changed")
	testutil.TestWriteFile(t, f, "x")

	var buf bytes.Buffer
	s, err := New(context.Background(), tr, OneShot(10*time.Millisecond))
	testutil.FatalIfErr(t, err)
	s.oneShotOutput = &buf
	testutil.FatalIfErr(t, s.Run())

	if tr.State() == dirtytracker.Unknown {
		t.Skip("filesystem watching unavailable on this host")
	}
	if !strings.Contains(buf.String(), f) {
		t.Errorf("one-shot output missing %q:\n%s", f, buf.String())
	}
}
