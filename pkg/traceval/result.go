package traceval

import "github.com/crimson-sun/traceval/internal/model"

// Expectation declares what a test case expects of the agent.
type Expectation struct {
	ShouldTrigger bool
	ExpectedTools string // comma-separated; optional
	Category      string
	SecurityFocus bool
}

// Case pairs one captured trace with its expectation.
type Case struct {
	RawTrace    string
	Expectation Expectation
}

// Command is one extracted command execution.
type Command struct {
	Command    string
	Status     string
	DurationMS *float64
}

// TraceReport summarizes the behavioral analysis of one trace.
type TraceReport struct {
	EventCount          int
	ErrorCount          int
	DurationMS          *float64
	Commands            []Command
	IsThrashing         bool
	ThrashingCommand    string
	ThrashingStreak     int
	InputTokens         *int // nil = unknown, never zero
	OutputTokens        *int
	TotalTokens         *int
	TokenSource         string
	EfficiencyScore     int
	DeterminismWarnings []string
	CreatedFiles        []string
}

// Finding is one security detector outcome.
type Finding struct {
	ID       string
	Name     string
	Pass     bool
	Severity string
	Notes    string
	Examples []string
}

// SecurityResult is the weighted 0–16 security score with per-detector
// findings.
type SecurityResult struct {
	Score      int
	MaxScore   int
	Percentage int
	Findings   []Finding
}

// TriggerResult records whether the agent acted, with a justification.
type TriggerResult struct {
	Triggered bool
	Reason    string
}

// Result is the complete evaluation of one test case. Security is nil
// unless the case declared a security focus.
type Result struct {
	RunID    string
	Backend  string
	Report   TraceReport
	Security *SecurityResult
	Trigger  TriggerResult
	Passed   bool
}

// fromCaseResult converts the internal record to the public type.
func fromCaseResult(r model.CaseResult) Result {
	out := Result{
		RunID:   r.RunID,
		Backend: r.Backend,
		Report: TraceReport{
			EventCount:          r.Report.EventCount,
			ErrorCount:          r.Report.ErrorCount,
			DurationMS:          r.Report.DurationMS,
			IsThrashing:         r.Report.Thrashing.IsThrashing,
			ThrashingCommand:    r.Report.Thrashing.Command,
			ThrashingStreak:     r.Report.Thrashing.Streak,
			InputTokens:         r.Report.Tokens.InputTokens,
			OutputTokens:        r.Report.Tokens.OutputTokens,
			TotalTokens:         r.Report.Tokens.TotalTokens,
			TokenSource:         r.Report.Tokens.Source,
			EfficiencyScore:     r.Report.EfficiencyScore,
			DeterminismWarnings: r.Report.DeterminismWarnings,
			CreatedFiles:        r.Report.CreatedFiles,
		},
		Trigger: TriggerResult{Triggered: r.Trigger.Triggered, Reason: r.Trigger.Reason},
		Passed:  r.Passed,
	}
	for _, c := range r.Report.Commands {
		out.Report.Commands = append(out.Report.Commands, Command{
			Command:    c.Command,
			Status:     c.Status,
			DurationMS: c.DurationMS,
		})
	}
	if r.Security != nil {
		sec := &SecurityResult{
			Score:      r.Security.Score,
			MaxScore:   r.Security.MaxScore,
			Percentage: r.Security.Percentage,
		}
		for _, f := range r.Security.Findings {
			sec.Findings = append(sec.Findings, Finding{
				ID:       f.ID,
				Name:     f.Name,
				Pass:     f.Pass,
				Severity: f.Severity,
				Notes:    f.Notes,
				Examples: f.Examples,
			})
		}
		out.Security = sec
	}
	return out
}
