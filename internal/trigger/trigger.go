// Package trigger decides whether a test case's declared expectation was
// met: did the agent actually act on the prompt, or correctly refrain.
package trigger

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/traceval/internal/model"
)

// Clarification tooling does not count as substantive action: asking
// questions, plan-mode toggles, and todo-list bookkeeping.
var clarificationTools = []string{
	"askuserquestion",
	"ask_user",
	"exitplanmode",
	"enterplanmode",
	"plan_mode",
	"todowrite",
	"todoread",
	"todo",
	"question",
}

// A message longer than this that does not end in a question mark is taken
// as a real answer rather than a clarifying question.
const substantiveMessageLen = 80

// Validate compares the trace against the declared expectation. It always
// returns a verdict with a human-readable justification.
func Validate(events []model.TraceEvent, exp model.Expectation) model.TriggerResult {
	tools := substantiveTools(events)

	if !exp.ShouldTrigger {
		if len(tools) == 0 {
			return model.TriggerResult{
				Triggered: false,
				Reason:    "no substantive tool calls (correctly did not trigger)",
			}
		}
		return model.TriggerResult{
			Triggered: true,
			Reason:    fmt.Sprintf("substantive tool call(s) occurred: %s", strings.Join(tools, ", ")),
		}
	}

	if expected := expectedList(exp.ExpectedTools); len(expected) > 0 {
		for _, tool := range tools {
			for _, want := range expected {
				if toolMatches(tool, want) {
					return model.TriggerResult{
						Triggered: true,
						Reason:    fmt.Sprintf("tool %q matched expected tool %q", tool, want),
					}
				}
			}
		}
		if len(tools) > 0 {
			// The agent acted, just not with the predicted tool.
			return model.TriggerResult{
				Triggered: true,
				Reason: fmt.Sprintf("no expected tool matched, but substantive tool call(s) occurred: %s",
					strings.Join(tools, ", ")),
			}
		}
		return model.TriggerResult{
			Triggered: false,
			Reason:    "no substantive tool calls occurred",
		}
	}

	if len(tools) > 0 {
		return model.TriggerResult{
			Triggered: true,
			Reason:    fmt.Sprintf("substantive tool call(s) occurred: %s", strings.Join(tools, ", ")),
		}
	}
	if substantiveMessage(events) {
		return model.TriggerResult{
			Triggered: true,
			Reason:    "agent produced a substantive answer",
		}
	}
	return model.TriggerResult{
		Triggered: false,
		Reason:    "no substantive tool calls or answers",
	}
}

// substantiveTools returns the names of tool calls that are not
// clarification/meta tooling, in order of occurrence.
func substantiveTools(events []model.TraceEvent) []string {
	var tools []string
	for _, ev := range events {
		if ev.Type != model.TypeToolCall || ev.Tool == "" {
			continue
		}
		if isClarification(ev.Tool) {
			continue
		}
		tools = append(tools, ev.Tool)
	}
	return tools
}

func isClarification(tool string) bool {
	lower := strings.ToLower(tool)
	for _, c := range clarificationTools {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// toolMatches is a case-insensitive substring match in either direction,
// so "bash" matches "Bash" and "Bash" matches "run_bash_command".
func toolMatches(actual, expected string) bool {
	a, e := strings.ToLower(actual), strings.ToLower(expected)
	return strings.Contains(a, e) || strings.Contains(e, a)
}

func expectedList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func substantiveMessage(events []model.TraceEvent) bool {
	for _, ev := range events {
		if ev.Type != model.TypeMessage {
			continue
		}
		content := strings.TrimSpace(ev.Content)
		if len(content) > substantiveMessageLen && !strings.HasSuffix(content, "?") {
			return true
		}
	}
	return false
}
