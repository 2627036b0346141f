// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker

import (
	"encoding/json"
	"html/template"
	"io"
)

const trackerTemplate = `
<h2 id="tracker">Dirty Tracker</h2>
<p>Root: <code>{{.Root}}</code></p>
<p>State: <b>{{.State}}</b></p>
{{if .Known}}
<h3>Dirty paths ({{len .Paths}})</h3>
<ul>
{{range .Paths}}
<li><pre>{{.}}</pre></li>
{{end}}
</ul>
{{else}}
<p>Changes may have been missed; a full rescan is required.</p>
{{end}}
`

var trackerTmpl = template.Must(template.New("tracker").Parse(trackerTemplate))

// Status is a serialisable snapshot of a Tracker.
type Status struct {
	Root  string   `json:"root"`
	State State    `json:"state"`
	Paths []string `json:"paths"`
}

// Status returns a consistent snapshot of the tracker.  Paths is nil when
// the state is Unknown.
func (t *Tracker) Status() Status {
	state, paths := t.Snapshot()
	return Status{Root: t.root, State: state, Paths: paths}
}

// WriteStatusHTML emits the Tracker's state in HTML format to the io.Writer w.
func (t *Tracker) WriteStatusHTML(w io.Writer) error {
	s := t.Status()
	data := struct {
		Status
		Known bool
	}{s, s.State != Unknown}
	return trackerTmpl.Execute(w, data)
}

// WriteStatusJSON emits the Tracker's state as JSON to the io.Writer w.
// paths is null when the state is unknown.
func (t *Tracker) WriteStatusJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Status())
}
