// Package codex normalizes Codex CLI experimental-json output: flat
// item.started/item.completed records with a status field, plus
// thread/turn lifecycle events that are already close to canonical.
package codex

import (
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
)

func init() {
	normalize.Register("codex", func() normalize.Normalizer {
		return &Normalizer{}
	})
}

// Normalizer maps Codex CLI's item-based vocabulary onto canonical events.
type Normalizer struct{}

func (n *Normalizer) Normalize(records []model.RawRecord) []model.TraceEvent {
	if len(records) == 0 {
		return nil
	}
	st := normalize.NewState("codex")
	// Item ids whose tool_call has already been emitted, so a completed
	// record without a preceding started record still yields a call.
	started := map[string]bool{}
	var last string
	for i, rec := range records {
		if rec.Malformed {
			if i == 0 {
				st.EnsureThread("")
			}
			st.Passthrough(normalize.PassthroughEvent(rec))
			continue
		}
		f := rec.Fields
		ts := normalize.Timestamp(f)
		if ts != "" {
			last = ts
		}
		if sid := normalize.Str(f, "thread_id", "session_id"); sid != "" {
			st.SetThreadID(sid)
		}

		typ := normalize.Str(f, "type")
		switch typ {
		case "item.started", "item.updated", "item.completed":
			n.item(st, started, f, ts, typ == "item.completed")
		case "error":
			st.Emit(model.TraceEvent{
				Type:      model.TypeError,
				Timestamp: ts,
				Error:     &model.ErrorInfo{Message: normalize.Str(f, "message")},
			})
		default:
			if model.IsCanonical(typ) {
				st.PassCanonical(normalize.FromCanonical(f))
				continue
			}
			if i == 0 {
				st.EnsureThread(ts)
			}
			st.Passthrough(normalize.PassthroughEvent(rec))
		}
	}
	return st.Finish(last)
}

func (n *Normalizer) item(st *normalize.State, seen map[string]bool, f map[string]any, ts string, completed bool) {
	item := normalize.Obj(f, "item")
	if item == nil {
		st.Passthrough(model.TraceEvent{Type: normalize.Str(f, "type"), Timestamp: ts, Raw: f})
		return
	}
	id := normalize.Str(item, "id")
	switch normalize.Str(item, "item_type", "type") {
	case "command_execution":
		if !seen[id] {
			seen[id] = true
			st.Emit(model.TraceEvent{
				Type:      model.TypeToolCall,
				Timestamp: ts,
				Tool:      "shell",
				Input:     map[string]any{"command": normalize.Str(item, "command")},
				CallID:    id,
			})
		}
		if completed {
			status := "success"
			if code, ok := normalize.Num(item, "exit_code"); ok && code != 0 {
				status = "error"
			} else if s := normalize.Str(item, "status"); s == "failed" {
				status = "error"
			}
			ev := model.TraceEvent{
				Type:      model.TypeToolResult,
				Timestamp: ts,
				Status:    status,
				Output:    normalize.Str(item, "aggregated_output", "output"),
				CallID:    id,
			}
			if d, ok := normalize.Num(item, "duration_ms"); ok {
				ev.DurationMS = d
			}
			st.Emit(ev)
		}
	case "file_change":
		if completed || !seen[id] {
			seen[id] = true
			for _, c := range normalize.List(item, "changes") {
				change, ok := c.(map[string]any)
				if !ok {
					continue
				}
				st.Emit(model.TraceEvent{
					Type:      model.TypeToolCall,
					Timestamp: ts,
					Tool:      "file_change",
					Input: map[string]any{
						"path": normalize.Str(change, "path"),
						"kind": normalize.Str(change, "kind"),
					},
					CallID: id,
				})
			}
		}
	case "agent_message":
		if completed {
			st.Emit(model.TraceEvent{
				Type:      model.TypeMessage,
				Timestamp: ts,
				Content:   normalize.Str(item, "text"),
			})
		}
	default:
		st.Passthrough(model.TraceEvent{Type: normalize.Str(f, "type"), Timestamp: ts, Raw: f})
	}
}
