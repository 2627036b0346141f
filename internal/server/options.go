// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package server

import (
	"net"
	"time"

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/google/dirtytracker/internal/waker"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Option configures server.Server
type Option interface {
	apply(*Server) error
}

// BindAddress sets the HTTP server address in Server.
func BindAddress(address, port string) Option {
	return &bindAddress{address, port}
}

type bindAddress struct {
	address, port string
}

func (opt bindAddress) apply(s *Server) error {
	if s.listener != nil {
		return errors.New("HTTP server bind address already supplied")
	}
	s.bindAddress = net.JoinHostPort(opt.address, opt.port)
	var err error
	s.listener, err = net.Listen("tcp", s.bindAddress)
	return err
}

// BindUnixSocket sets the UNIX socket path in Server.
type BindUnixSocket string

func (opt BindUnixSocket) apply(s *Server) error {
	if s.listener != nil {
		return errors.New("HTTP server bind address already supplied")
	}
	s.bindUnixSocket = string(opt)
	var err error
	s.listener, err = net.Listen("unix", string(opt))
	return err
}

// SetBuildInfo sets the program build information in the Server.
type SetBuildInfo BuildInfo

func (opt SetBuildInfo) apply(s *Server) error {
	s.buildInfo = BuildInfo(opt)
	return nil
}

// ReportWaker sets the waker that paces the periodic state report to the log.
func ReportWaker(w waker.Waker) Option {
	return &reportWaker{w}
}

type reportWaker struct {
	waker.Waker
}

func (opt reportWaker) apply(s *Server) error {
	s.reportWaker = opt.Waker
	return nil
}

// OneShot makes Run wait for the given duration, print the tracker's state as
// JSON to stdout and return, instead of serving HTTP.
type OneShot time.Duration

func (opt OneShot) apply(s *Server) error {
	s.oneShot = true
	s.oneShotWait = time.Duration(opt)
	return nil
}

type niladicOption struct {
	applyfunc func(s *Server) error
}

func (n *niladicOption) apply(s *Server) error {
	return n.applyfunc(s)
}

// HTTPDebugEndpoints enables the /debug and /tracez endpoints.
var HTTPDebugEndpoints = &niladicOption{
	func(s *Server) error {
		s.httpDebugEndpoints = true
		return nil
	}}

// JaegerReporter creates a new jaeger reporter that sends to the given Jaeger endpoint address.
type JaegerReporter string

func (opt JaegerReporter) apply(s *Server) error {
	je, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: string(opt),
		Process: jaeger.Process{
			ServiceName: "dirtytracker",
		},
	})
	if err != nil {
		return err
	}
	trace.RegisterExporter(je)
	return nil
}
