// Package opencode normalizes OpenCode's part-based event stream: messages
// arrive as typed parts (text, tool, step markers) under session events.
package opencode

import (
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
)

func init() {
	normalize.Register("opencode", func() normalize.Normalizer {
		return &Normalizer{}
	})
}

// Normalizer maps OpenCode's part-based vocabulary onto canonical events.
type Normalizer struct{}

func (n *Normalizer) Normalize(records []model.RawRecord) []model.TraceEvent {
	if len(records) == 0 {
		return nil
	}
	st := normalize.NewState("opencode")
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

		typ := normalize.Str(f, "type")
		switch typ {
		case "session.created", "session.updated":
			if sid := normalize.Str(normalize.Obj(f, "session"), "id"); sid != "" {
				st.SetThreadID(sid)
			}
			st.EnsureThread(ts)
		case "message.part":
			n.part(st, normalize.Obj(f, "part"), ts)
		case "session.error":
			msg := normalize.Str(normalize.Obj(f, "error"), "message")
			if msg == "" {
				msg = "session error"
			}
			st.Emit(model.TraceEvent{
				Type:      model.TypeError,
				Timestamp: ts,
				Error:     &model.ErrorInfo{Message: msg},
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

func (n *Normalizer) part(st *normalize.State, part map[string]any, ts string) {
	if part == nil {
		return
	}
	switch normalize.Str(part, "type") {
	case "step-start":
		st.EnsureTurn(ts)
	case "step-finish":
		tokens := normalize.Obj(part, "tokens")
		var usage *model.Usage
		if tokens != nil {
			usage = &model.Usage{
				InputTokens:  normalize.IntPtr(tokens, "input"),
				OutputTokens: normalize.IntPtr(tokens, "output"),
			}
		}
		cost, _ := normalize.Num(part, "cost")
		st.EnsureTurn(ts)
		st.CloseTurn(ts, usage, cost)
	case "text":
		st.Emit(model.TraceEvent{
			Type:      model.TypeMessage,
			Timestamp: ts,
			Content:   normalize.Str(part, "text"),
		})
	case "tool":
		state := normalize.Obj(part, "state")
		st.Emit(model.TraceEvent{
			Type:      model.TypeToolCall,
			Timestamp: ts,
			Tool:      normalize.Str(part, "tool"),
			Input:     normalize.Obj(state, "input"),
			CallID:    normalize.Str(part, "callID", "call_id", "id"),
		})
		switch normalize.Str(state, "status") {
		case "completed":
			st.Emit(toolResult(part, state, ts, "success"))
		case "error":
			st.Emit(toolResult(part, state, ts, "error"))
		}
	}
}

func toolResult(part, state map[string]any, ts, status string) model.TraceEvent {
	ev := model.TraceEvent{
		Type:      model.TypeToolResult,
		Timestamp: ts,
		Status:    status,
		Output:    normalize.Str(state, "output", "error"),
		CallID:    normalize.Str(part, "callID", "call_id", "id"),
	}
	if span := normalize.Obj(state, "time"); span != nil {
		start, okS := normalize.Num(span, "start")
		end, okE := normalize.Num(span, "end")
		if okS && okE && end >= start {
			ev.DurationMS = end - start
		}
	}
	return ev
}
