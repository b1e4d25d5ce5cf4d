package model

// Thrashing describes the longest run of immediately consecutive, textually
// identical commands. Streak counts repeats beyond the first occurrence.
type Thrashing struct {
	IsThrashing bool   `json:"is_thrashing"`
	Command     string `json:"command,omitempty"`
	Streak      int    `json:"streak,omitempty"`
}

// TokenReport holds best-effort token totals. Nil means no usage data was
// found anywhere in the trace: unknown, not zero. Source names the
// extraction strategy that produced the counts.
type TokenReport struct {
	InputTokens  *int   `json:"input_tokens"`
	OutputTokens *int   `json:"output_tokens"`
	TotalTokens  *int   `json:"total_tokens"`
	Source       string `json:"source,omitempty"`
}

// TraceReport is the Trace Analyzer's output for one test case.
type TraceReport struct {
	EventCount          int             `json:"event_count"`
	ErrorCount          int             `json:"error_count"`
	DurationMS          *float64        `json:"duration_ms"`
	Commands            []CommandRecord `json:"commands,omitempty"`
	Thrashing           Thrashing       `json:"thrashing"`
	Tokens              TokenReport     `json:"tokens"`
	EfficiencyScore     int             `json:"efficiency_score"`
	DeterminismWarnings []string        `json:"determinism_warnings,omitempty"`
	CreatedFiles        []string        `json:"created_files,omitempty"`
}

// CaseResult is the merged per-test-case record handed to the downstream
// reporting collaborator: trace report, security result when the case is
// security-focused, and trigger verdict.
type CaseResult struct {
	RunID       string          `json:"run_id"`
	Backend     string          `json:"backend,omitempty"`
	Expectation Expectation     `json:"expectation"`
	Report      TraceReport     `json:"report"`
	Security    *SecurityResult `json:"security,omitempty"`
	Trigger     TriggerResult   `json:"trigger"`
	Passed      bool            `json:"passed"`
}
