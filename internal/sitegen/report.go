package sitegen

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
)

// Status is the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Report summarizes one build.
type Report struct {
	BuildID      string                   `json:"buildId"`
	Status       Status                   `json:"status"`
	Start        time.Time                `json:"start"`
	End          time.Time                `json:"end"`
	Duration     time.Duration            `json:"duration"`
	OutputDir    string                   `json:"outputDir,omitempty"`
	DryRun       bool                     `json:"dryRun,omitempty"`
	Routes       map[string]int           `json:"routes"`
	Pages        int                      `json:"pages"`
	Warnings     int                      `json:"warnings"`
	Fatal        int                      `json:"fatal"`
	ManifestHash string                   `json:"manifestHash"`
	Diagnostics  []diagnostics.Diagnostic `json:"diagnostics"`
}

func newReport(id string, start time.Time) *Report {
	return &Report{BuildID: id, Start: start, Routes: make(map[string]int)}
}

func (r *Report) finish(end time.Time, status Status) {
	r.End = end
	r.Duration = end.Sub(r.Start)
	r.Status = status
}

// Summary renders a short human readable summary.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %s %s in %s: %d pages, %d warnings, %d fatal",
		r.BuildID, r.Status, r.Duration.Round(time.Millisecond), r.Pages, r.Warnings, r.Fatal)
	if r.ManifestHash != "" {
		fmt.Fprintf(&b, "\nmanifest %s", r.ManifestHash)
	}
	for _, d := range r.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
