package codex

import (
	"testing"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/trace"
)

func normalizeRaw(raw string) []model.TraceEvent {
	n := &Normalizer{}
	return n.Normalize(trace.Parse(raw))
}

const itemTrace = `{"type":"thread.started","thread_id":"th-9","timestamp":"2026-03-01T11:00:00Z"}
{"type":"turn.started","timestamp":"2026-03-01T11:00:01Z"}
{"type":"item.started","timestamp":"2026-03-01T11:00:02Z","item":{"id":"i1","item_type":"command_execution","command":"go test ./..."}}
{"type":"item.completed","timestamp":"2026-03-01T11:00:05Z","item":{"id":"i1","item_type":"command_execution","command":"go test ./...","aggregated_output":"ok","exit_code":0,"duration_ms":3000}}
{"type":"item.completed","timestamp":"2026-03-01T11:00:06Z","item":{"id":"i2","item_type":"agent_message","text":"All tests pass."}}
{"type":"turn.completed","timestamp":"2026-03-01T11:00:07Z","usage":{"input_tokens":900,"output_tokens":120}}`

func TestNormalizeItems(t *testing.T) {
	events := normalizeRaw(itemTrace)

	want := []string{
		model.TypeThreadStarted,
		model.TypeTurnStarted,
		model.TypeToolCall,
		model.TypeToolResult,
		model.TypeMessage,
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
	if events[0].ThreadID != "th-9" {
		t.Fatalf("thread id = %q", events[0].ThreadID)
	}
	call := events[2]
	if call.Tool != "shell" || call.Input["command"] != "go test ./..." || call.CallID != "i1" {
		t.Fatalf("tool call = %+v", call)
	}
	res := events[3]
	if res.Status != "success" || res.Output != "ok" || res.DurationMS != 3000 {
		t.Fatalf("tool result = %+v", res)
	}
	if events[5].Usage == nil || *events[5].Usage.InputTokens != 900 {
		t.Fatalf("turn usage = %+v", events[5].Usage)
	}
}

func TestCompletedWithoutStartedEmitsCall(t *testing.T) {
	raw := `{"type":"item.completed","item":{"id":"i1","item_type":"command_execution","command":"make build","exit_code":2,"aggregated_output":"boom"}}`
	events := normalizeRaw(raw)

	var call, res bool
	for _, ev := range events {
		switch ev.Type {
		case model.TypeToolCall:
			call = ev.Input["command"] == "make build"
		case model.TypeToolResult:
			res = ev.Status == "error"
		}
	}
	if !call || !res {
		t.Fatalf("expected call+error result, got %+v", events)
	}
}

func TestFileChangeFansOutPerPath(t *testing.T) {
	raw := `{"type":"item.completed","item":{"id":"i3","item_type":"file_change","changes":[{"path":"a.go","kind":"add"},{"path":"b.go","kind":"update"}]}}`
	events := normalizeRaw(raw)

	var paths []string
	for _, ev := range events {
		if ev.Type == model.TypeToolCall && ev.Tool == "file_change" {
			paths = append(paths, ev.Input["path"].(string))
		}
	}
	if len(paths) != 2 || paths[0] != "a.go" || paths[1] != "b.go" {
		t.Fatalf("file change paths = %v", paths)
	}
}

func TestErrorEvent(t *testing.T) {
	raw := `{"type":"error","message":"stream disconnected"}`
	events := normalizeRaw(raw)
	var found bool
	for _, ev := range events {
		if ev.Type == model.TypeError && ev.Error != nil && ev.Error.Message == "stream disconnected" {
			found = true
		}
	}
	if !found {
		t.Fatalf("error event not mapped: %+v", events)
	}
	if events[0].Type != model.TypeThreadStarted {
		t.Fatalf("error-only stream must still open a thread, got %s first", events[0].Type)
	}
}

func TestUnknownItemTypePassesThrough(t *testing.T) {
	raw := `{"type":"item.completed","item":{"id":"i4","item_type":"web_search","query":"golang"}}`
	events := normalizeRaw(raw)
	found := false
	for _, ev := range events {
		if ev.Type == "item.completed" && ev.Raw != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("unknown item type was dropped")
	}
}
