package traceval

import (
	"context"
	"strings"
	"testing"
	"time"
)

const claudeTrace = `{"type":"system","subtype":"init","session_id":"sess-1","timestamp":"2026-03-01T10:00:00Z"}
{"type":"assistant","timestamp":"2026-03-01T10:00:02Z","message":{"content":[{"type":"tool_use","id":"toolu_1","name":"Bash","input":{"command":"go test ./..."}}]}}
{"type":"user","timestamp":"2026-03-01T10:00:08Z","message":{"content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"ok"}]}}
{"type":"assistant","timestamp":"2026-03-01T10:00:09Z","message":{"content":[{"type":"text","text":"Tests pass, nothing else to do here today."}],"usage":{"input_tokens":1200,"output_tokens":80}}}
{"type":"result","subtype":"success","timestamp":"2026-03-01T10:00:10Z","usage":{"input_tokens":1200,"output_tokens":80},"total_cost_usd":0.01}`

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New(WithBackend("cursor")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBackendsRegistered(t *testing.T) {
	got := strings.Join(Backends(), ",")
	for _, want := range []string{"claude", "codex", "gemini", "generic", "opencode"} {
		if !strings.Contains(got, want) {
			t.Fatalf("backend %q missing from %q", want, got)
		}
	}
}

func TestEvaluateTriggeredCase(t *testing.T) {
	ev, err := New(WithBackend("claude"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result := ev.Evaluate(claudeTrace, Expectation{ShouldTrigger: true, ExpectedTools: "bash"})
	if !result.Passed {
		t.Fatalf("result = %+v", result)
	}
	if result.RunID == "" || result.Backend != "claude" {
		t.Fatalf("identity fields = %q %q", result.RunID, result.Backend)
	}
	if !result.Trigger.Triggered || !strings.Contains(result.Trigger.Reason, "matched expected tool") {
		t.Fatalf("trigger = %+v", result.Trigger)
	}
	if len(result.Report.Commands) != 1 || result.Report.Commands[0].Command != "go test ./..." {
		t.Fatalf("commands = %+v", result.Report.Commands)
	}
	if result.Report.TotalTokens == nil || *result.Report.TotalTokens == 0 {
		t.Fatalf("tokens = %+v", result.Report)
	}
	if result.Security != nil {
		t.Fatal("security must be nil without a security focus")
	}
}

func TestEvaluateSecurityFocus(t *testing.T) {
	ev, err := New(WithBackend("claude"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result := ev.Evaluate(claudeTrace, Expectation{ShouldTrigger: true, SecurityFocus: true})
	if result.Security == nil {
		t.Fatal("security focus requested but result.Security is nil")
	}
	if result.Security.MaxScore != 16 || result.Security.Score != 16 {
		t.Fatalf("security = %+v", result.Security)
	}
}

func TestEvaluateNeverFailsOnGarbage(t *testing.T) {
	ev, err := New(WithBackend("generic"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result := ev.Evaluate("not json at all\n{{{\n", Expectation{ShouldTrigger: true})
	if result.Passed {
		t.Fatalf("garbage trace passed: %+v", result)
	}
	if result.Report.EventCount == 0 {
		t.Fatal("malformed lines must survive as events")
	}
}

func TestEvaluateAllPreservesOrder(t *testing.T) {
	ev, err := New(WithBackend("claude"), WithParallelism(4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []Case{
		{RawTrace: claudeTrace, Expectation: Expectation{ShouldTrigger: true}},
		{RawTrace: "", Expectation: Expectation{ShouldTrigger: false}},
		{RawTrace: claudeTrace, Expectation: Expectation{ShouldTrigger: false}},
	}
	results := ev.EvaluateAll(context.Background(), cases)
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("case 0: %+v", results[0].Trigger)
	}
	if !results[1].Passed {
		t.Fatalf("case 1 (empty trace, should not trigger): %+v", results[1].Trigger)
	}
	if results[2].Passed {
		t.Fatalf("case 2 (acted despite should-not-trigger): %+v", results[2].Trigger)
	}
}

func TestEvaluatePromptRequiresCommand(t *testing.T) {
	ev, err := New(WithBackend("claude"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := ev.EvaluatePrompt(context.Background(), "do things", Expectation{}); err == nil {
		t.Fatal("expected error without a configured command")
	}
}

func TestEvaluatePromptWithFailingBackend(t *testing.T) {
	ev, err := New(
		WithBackend("generic"),
		WithCommand("/bin/false"),
		WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := ev.EvaluatePrompt(context.Background(), "do things", Expectation{ShouldTrigger: true})
	if err != nil {
		t.Fatalf("evaluate prompt: %v", err)
	}
	if result.Passed {
		t.Fatalf("failed backend must not pass a trigger case: %+v", result)
	}
	if result.Report.ErrorCount == 0 {
		t.Fatalf("synthetic error trace not counted: %+v", result.Report)
	}
}
