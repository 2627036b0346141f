// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package server

import (
	"html/template"
	"net/http"

	"github.com/golang/glog"
)

const statusTemplate = `
<!DOCTYPE html>
<html>
<head>
<title>dirtytracker on {{.BindAddress}}</title>
</head>
<body>
<h1>dirtytracker on {{.BindAddress}}</h1>
<p>Build: {{.BuildInfo}}</p>
<p>State: <a href="/json">json</a>, <a href="/metrics">prometheus</a></p>
<p>Debug: {{ if .HTTPDebugEndpoints }}<a href="/debug/pprof">debug/pprof</a>, <a href="/debug/vars">debug/vars</a>, <a href="/tracez">tracez</a>{{ else }} disabled {{ end }}</p>
`

const statusTemplateEnd = `
</body>
</html>
`

var (
	statusTmpl    = template.Must(template.New("status").Parse(statusTemplate))
	statusEndTmpl = template.Must(template.New("statusend").Parse(statusTemplateEnd))
)

// ServeHTTP satisfies the http.Handler interface, and is used to serve the
// root page of dirtytracker for online status reporting.
func (s *Server) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	data := struct {
		BindAddress        string
		BuildInfo          string
		HTTPDebugEndpoints bool
	}{
		s.Addr(),
		s.buildInfo.String(),
		s.httpDebugEndpoints,
	}
	w.Header().Add("Content-type", "text/html")
	w.WriteHeader(http.StatusOK)
	if err := statusTmpl.Execute(w, data); err != nil {
		glog.Warningf("Error while writing status: %s", err)
		return
	}
	if err := s.tracker.WriteStatusHTML(w); err != nil {
		glog.Warningf("Error while writing tracker status: %s", err)
	}
	if err := statusEndTmpl.Execute(w, data); err != nil {
		glog.Warningf("Error while writing status: %s", err)
	}
}

// handleJSON serves the tracker's snapshot as JSON.
func (s *Server) handleJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.tracker.WriteStatusJSON(w); err != nil {
		glog.Warningf("Error while writing json status: %s", err)
	}
}

// quitHandler shuts the server down on a POST.
func (s *Server) quitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Add("Allow", http.MethodPost)
		http.Error(w, "use POST to quit", http.StatusMethodNotAllowed)
		return
	}
	glog.Info("Quit requested over HTTP")
	s.webquitOnce.Do(func() { close(s.webquit) })
	w.WriteHeader(http.StatusOK)
}
