// Package report defines where per-case evaluation results go. Sinks emit
// result records as data (NDJSON, HTTP); rendering them into documents is
// someone else's job.
package report

import (
	"context"

	"github.com/crimson-sun/traceval/internal/model"
)

// Sink is the interface for result record destinations.
type Sink interface {
	Write(ctx context.Context, result model.CaseResult) error
	Close() error
}

// Verbosity controls how much detail a sink retains per record.
type Verbosity int

const (
	Minimal  Verbosity = iota // verdicts and scores only
	Standard                  // plus command sequence and finding examples
	Full                      // everything
)

// ParseVerbosity maps a config string to a Verbosity. Unknown values get
// Standard.
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

// Format returns a copy of the result with fields stripped according to
// verbosity. At Minimal the command list, determinism warnings, and finding
// examples are dropped (omitted from JSON via omitempty).
func Format(r model.CaseResult, v Verbosity) model.CaseResult {
	if v != Minimal {
		return r
	}
	r.Report.Commands = nil
	r.Report.DeterminismWarnings = nil
	r.Report.CreatedFiles = nil
	if r.Security != nil {
		sec := *r.Security
		findings := make([]model.SecurityFinding, len(sec.Findings))
		for i, f := range sec.Findings {
			f.Examples = nil
			findings[i] = f
		}
		sec.Findings = findings
		r.Security = &sec
	}
	return r
}
