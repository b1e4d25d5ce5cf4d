// Package gemini normalizes Gemini CLI step-json output. Turns are
// step-grouped: a step finishing with reason "tool-calls" is intermediate,
// and only a terminal finish reason (absent or "stop") closes the turn, so
// a subsequent step opens a fresh one.
package gemini

import (
	"encoding/json"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
)

func init() {
	normalize.Register("gemini", func() normalize.Normalizer {
		return &Normalizer{}
	})
}

// Normalizer maps Gemini CLI's step-based vocabulary onto canonical events.
type Normalizer struct{}

func (n *Normalizer) Normalize(records []model.RawRecord) []model.TraceEvent {
	if len(records) == 0 {
		return nil
	}
	st := normalize.NewState("gemini")
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
		if sid := normalize.Str(f, "session_id"); sid != "" {
			st.SetThreadID(sid)
		}

		typ := normalize.Str(f, "type")
		switch typ {
		case "step.started":
			st.EnsureTurn(ts)
		case "step.finished":
			n.step(st, f, ts)
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

// step fans a finished step's parts out into canonical events, then decides
// whether the step was terminal for its turn.
func (n *Normalizer) step(st *normalize.State, f map[string]any, ts string) {
	content := normalize.Obj(f, "content")
	for _, p := range normalize.List(content, "parts") {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		switch {
		case normalize.Str(part, "text") != "":
			st.Emit(model.TraceEvent{
				Type:      model.TypeMessage,
				Timestamp: ts,
				Content:   normalize.Str(part, "text"),
			})
		case normalize.Obj(part, "function_call") != nil:
			call := normalize.Obj(part, "function_call")
			st.Emit(model.TraceEvent{
				Type:      model.TypeToolCall,
				Timestamp: ts,
				Tool:      normalize.Str(call, "name"),
				Input:     normalize.Obj(call, "args"),
				CallID:    normalize.Str(call, "id"),
			})
		case normalize.Obj(part, "function_response") != nil:
			resp := normalize.Obj(part, "function_response")
			status := "success"
			payload := normalize.Obj(resp, "response")
			if normalize.Str(payload, "error") != "" {
				status = "error"
			}
			st.Emit(model.TraceEvent{
				Type:      model.TypeToolResult,
				Timestamp: ts,
				Status:    status,
				Output:    responseText(payload),
				CallID:    normalize.Str(resp, "id"),
			})
		}
	}

	// "tool-calls" means the model paused to run tools: the turn stays
	// open and the next step continues it.
	switch normalize.Str(f, "finish_reason") {
	case "tool-calls", "tool_calls":
		st.EnsureTurn(ts)
	default:
		usage := normalize.UsageFrom(normalize.Obj(f, "usage_metadata"))
		st.EnsureTurn(ts)
		st.CloseTurn(ts, usage, 0)
	}
}

func responseText(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	if s := normalize.Str(payload, "output", "result", "error"); s != "" {
		return s
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(b)
}
