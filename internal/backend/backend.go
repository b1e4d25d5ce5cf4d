// Package backend invokes an external agent process and captures its raw
// trace output. Invocations run one prompt at a time under a timeout, with
// no retry; a backend that is unavailable or fails is reported as a
// structured error trace rather than an error the caller must handle.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const defaultTimeout = 5 * time.Minute

// Backend describes how to invoke one agent CLI: the prompt is appended to
// the configured argument template.
type Backend struct {
	Name    string
	Command string
	Args    []string
	Timeout time.Duration
}

// Invocation is the captured outcome of one backend run. Stdout always
// holds a trace: real output on success, a synthetic error trace when the
// process could not run or timed out.
type Invocation struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS float64
	TimedOut   bool
}

// Run invokes the backend with the prompt appended to the arg template,
// inheriting the caller's environment. Timeouts and non-zero exits are
// terminal for the test case, never retried.
func (b Backend) Run(ctx context.Context, prompt string) Invocation {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), b.Args...), prompt)
	cmd := exec.CommandContext(runCtx, b.Command, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := float64(time.Since(start).Milliseconds())

	inv := Invocation{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: elapsed,
	}
	if err == nil {
		return inv
	}

	inv.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		inv.ExitCode = exitErr.ExitCode()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		inv.TimedOut = true
		err = fmt.Errorf("timed out after %s", timeout)
	}

	slog.Warn("backend invocation failed",
		"backend", b.Name, "command", b.Command, "exit_code", inv.ExitCode, "error", err)

	// Keep whatever the process managed to emit, then append the
	// synthetic failure events so the trace always ends in turn.failed.
	msg := fmt.Sprintf("backend %s: %v", b.Name, err)
	if inv.Stdout != "" && !bytes.HasSuffix(stdout.Bytes(), []byte("\n")) {
		inv.Stdout += "\n"
	}
	inv.Stdout += ErrorTrace(b.Name, msg)
	return inv
}

// ErrorTrace builds a minimal NDJSON trace for a failed invocation: one
// error event and one turn.failed event.
func ErrorTrace(source, message string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	lines := []map[string]any{
		{
			"type":      "error",
			"timestamp": ts,
			"message":   message,
			"source":    source,
		},
		{
			"type":      "turn.failed",
			"timestamp": ts,
			"error":     map[string]any{"message": message},
		},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, line := range lines {
		_ = enc.Encode(line) // fixed-shape maps cannot fail to marshal
	}
	return buf.String()
}
