package traceval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/traceval/internal/analyze"
	"github.com/crimson-sun/traceval/internal/backend"
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
	"github.com/crimson-sun/traceval/internal/security"
	"github.com/crimson-sun/traceval/internal/trace"
	"github.com/crimson-sun/traceval/internal/trigger"

	// Register normalizer implementations.
	_ "github.com/crimson-sun/traceval/internal/normalize/claude"
	_ "github.com/crimson-sun/traceval/internal/normalize/codex"
	_ "github.com/crimson-sun/traceval/internal/normalize/generic"
	_ "github.com/crimson-sun/traceval/internal/normalize/gemini"
	_ "github.com/crimson-sun/traceval/internal/normalize/opencode"
)

// Evaluator turns raw backend traces into per-test-case evaluation
// results. Safe for concurrent use: evaluation holds no shared state.
type Evaluator struct {
	opts       options
	normalizer normalize.Normalizer
}

// New creates an Evaluator. Fails only on an unknown backend name.
func New(opts ...Option) (*Evaluator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctor, err := normalize.Get(o.backend)
	if err != nil {
		return nil, fmt.Errorf("traceval: %w", err)
	}
	return &Evaluator{opts: o, normalizer: ctor()}, nil
}

// Backends returns the names of all supported backends.
func Backends() []string {
	return normalize.Backends()
}

// Evaluate analyzes one already-captured trace against an expectation.
// It never fails: malformed input degrades into pass-through events and
// worst-case scores, not errors.
func (e *Evaluator) Evaluate(rawTrace string, exp Expectation) Result {
	return fromCaseResult(e.evaluate(rawTrace, exp))
}

// EvaluateAll evaluates a batch of cases, preserving input order. Cases
// run sequentially unless WithParallelism raised the limit.
func (e *Evaluator) EvaluateAll(ctx context.Context, cases []Case) []Result {
	results := make([]Result, len(cases))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.parallelism)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			results[i] = e.Evaluate(c.RawTrace, c.Expectation)
			return nil
		})
	}
	g.Wait() // workers never return errors
	return results
}

// EvaluatePrompt invokes the configured backend process with the prompt,
// captures its trace, and evaluates it. Requires WithCommand. A backend
// that is unavailable or times out yields a synthetic error trace, so a
// result is still produced.
func (e *Evaluator) EvaluatePrompt(ctx context.Context, prompt string, exp Expectation) (Result, error) {
	if e.opts.command == "" {
		return Result{}, fmt.Errorf("traceval: no backend command configured")
	}
	b := backend.Backend{
		Name:    e.opts.backend,
		Command: e.opts.command,
		Args:    e.opts.args,
		Timeout: e.opts.timeout,
	}
	inv := b.Run(ctx, prompt)
	return fromCaseResult(e.evaluate(inv.Stdout, exp)), nil
}

func (e *Evaluator) evaluate(rawTrace string, exp Expectation) model.CaseResult {
	records := trace.Parse(rawTrace)
	events := e.normalizer.Normalize(records)

	report := analyze.Analyze(events)
	expectation := model.Expectation{
		ShouldTrigger: exp.ShouldTrigger,
		ExpectedTools: exp.ExpectedTools,
		Category:      exp.Category,
		SecurityFocus: exp.SecurityFocus,
	}
	verdict := trigger.Validate(events, expectation)

	result := model.CaseResult{
		RunID:       uuid.NewString(),
		Backend:     e.opts.backend,
		Expectation: expectation,
		Report:      report,
		Trigger:     verdict,
		Passed:      verdict.Triggered == exp.ShouldTrigger,
	}
	if exp.SecurityFocus {
		sec := security.Evaluate(events, report.Commands, nil)
		result.Security = &sec
	}
	return result
}
