package claude

import (
	"testing"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/trace"
)

func normalizeRaw(raw string) []model.TraceEvent {
	n := &Normalizer{}
	return n.Normalize(trace.Parse(raw))
}

const sessionTrace = `{"type":"system","subtype":"init","session_id":"sess-42","timestamp":"2026-03-01T10:00:00Z"}
{"type":"assistant","timestamp":"2026-03-01T10:00:01Z","message":{"usage":{"input_tokens":120,"output_tokens":40},"content":[{"type":"text","text":"Listing files."},{"type":"tool_use","id":"tu-1","name":"Bash","input":{"command":"ls -la"}}]}}
{"type":"user","timestamp":"2026-03-01T10:00:02Z","message":{"content":[{"type":"tool_result","tool_use_id":"tu-1","content":"total 8","is_error":false}]}}
{"type":"result","subtype":"success","timestamp":"2026-03-01T10:00:03Z","usage":{"input_tokens":120,"output_tokens":55},"total_cost_usd":0.012}`

func TestNormalizeSession(t *testing.T) {
	events := normalizeRaw(sessionTrace)

	want := []string{
		model.TypeThreadStarted,
		model.TypeTurnStarted,
		model.TypeMessage,
		model.TypeToolCall,
		model.TypeToolResult,
		model.TypeTurnCompleted,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Fatalf("event %d type = %s, want %s", i, events[i].Type, typ)
		}
	}

	if events[0].ThreadID != "sess-42" {
		t.Fatalf("thread id = %q, want sess-42", events[0].ThreadID)
	}
	if events[3].Tool != "Bash" || events[3].Input["command"] != "ls -la" || events[3].CallID != "tu-1" {
		t.Fatalf("tool call not mapped: %+v", events[3])
	}
	if events[4].Status != "success" || events[4].Output != "total 8" {
		t.Fatalf("tool result not mapped: %+v", events[4])
	}
	final := events[5]
	if final.Usage == nil || *final.Usage.InputTokens != 120 || *final.Usage.OutputTokens != 55 {
		t.Fatalf("turn usage not mapped: %+v", final.Usage)
	}
	if final.Cost != 0.012 {
		t.Fatalf("cost = %v, want 0.012", final.Cost)
	}
}

func TestContentBlockFanOut(t *testing.T) {
	raw := `{"type":"assistant","message":{"content":[{"type":"tool_use","id":"a","name":"Read","input":{"file_path":"x.go"}},{"type":"tool_use","id":"b","name":"Write","input":{"file_path":"y.go"}},{"type":"text","text":"two writes"}]}}`
	events := normalizeRaw(raw)

	calls, msgs := 0, 0
	for _, ev := range events {
		switch ev.Type {
		case model.TypeToolCall:
			calls++
		case model.TypeMessage:
			msgs++
		}
	}
	if calls != 2 || msgs != 1 {
		t.Fatalf("fan-out calls=%d msgs=%d, want 2/1", calls, msgs)
	}
}

func TestErrorResultFailsTurn(t *testing.T) {
	raw := `{"type":"assistant","message":{"content":[{"type":"text","text":"trying"}]}}
{"type":"result","subtype":"error_during_execution","result":"execution blew up"}`
	events := normalizeRaw(raw)

	last := events[len(events)-1]
	if last.Type != model.TypeTurnFailed {
		t.Fatalf("last event = %s, want turn.failed", last.Type)
	}
	if last.Error == nil || last.Error.Message != "execution blew up" {
		t.Fatalf("failure message not mapped: %+v", last.Error)
	}
}

func TestToolResultBlockList(t *testing.T) {
	raw := `{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"c","is_error":true,"content":[{"type":"text","text":"command "},{"type":"text","text":"failed"}]}]}}`
	events := normalizeRaw(raw)

	var res *model.TraceEvent
	for i := range events {
		if events[i].Type == model.TypeToolResult {
			res = &events[i]
		}
	}
	if res == nil {
		t.Fatal("no tool_result emitted")
	}
	if res.Status != "error" || res.Output != "command failed" {
		t.Fatalf("tool result = %+v", res)
	}
}

func TestDanglingTurnClosed(t *testing.T) {
	// No result record: the turn must still be closed at end of stream.
	raw := `{"type":"assistant","message":{"content":[{"type":"text","text":"hello"}]}}`
	events := normalizeRaw(raw)
	last := events[len(events)-1]
	if last.Type != model.TypeTurnCompleted {
		t.Fatalf("last event = %s, want synthesized turn.completed", last.Type)
	}
}

func TestUnknownSystemSubtypePassesThrough(t *testing.T) {
	raw := `{"type":"system","subtype":"compact_boundary","detail":"x"}`
	events := normalizeRaw(raw)
	found := false
	for _, ev := range events {
		if ev.Type == "system" && ev.Raw["detail"] == "x" {
			found = true
		}
	}
	if !found {
		t.Fatal("non-init system event was not passed through")
	}
}
