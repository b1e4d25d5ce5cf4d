package traceval

import "time"

type options struct {
	backend     string
	command     string
	args        []string
	timeout     time.Duration
	parallelism int
}

// Option configures an Evaluator.
type Option func(*options)

// WithBackend selects the normalizer for the backend that produced the
// traces. Default: "claude". Unknown names fail at New.
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithCommand sets the backend command template used by EvaluatePrompt:
// the prompt is appended to args at invocation time.
func WithCommand(command string, args ...string) Option {
	return func(o *options) {
		o.command = command
		o.args = args
	}
}

// WithTimeout bounds one backend invocation. Default: 5m. A timed-out
// invocation is a terminal failure for its test case, never retried.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithParallelism lets EvaluateAll run up to n test cases concurrently.
// Default: 1 (sequential). Cases share no state, so any n is safe;
// within-case event ordering is unaffected.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

func defaultOptions() options {
	return options{
		backend:     "claude",
		timeout:     5 * time.Minute,
		parallelism: 1,
	}
}
