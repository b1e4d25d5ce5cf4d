// Package claude normalizes Claude Code stream-json output. Assistant
// messages carry nested content blocks, so one native event fans out into
// one tool_call per tool-use block plus one message per text block.
package claude

import (
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
)

func init() {
	normalize.Register("claude", func() normalize.Normalizer {
		return &Normalizer{}
	})
}

// Normalizer maps Claude Code's event vocabulary onto canonical events.
type Normalizer struct{}

func (n *Normalizer) Normalize(records []model.RawRecord) []model.TraceEvent {
	if len(records) == 0 {
		return nil
	}
	st := normalize.NewState("claude")
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
		if sid := normalize.Str(f, "session_id", "sessionId"); sid != "" {
			st.SetThreadID(sid)
		}

		typ := normalize.Str(f, "type")
		switch {
		case typ == "system":
			// The init record carries the session identifier; other
			// system subtypes are informational and pass through.
			if normalize.Str(f, "subtype") == "init" {
				st.EnsureThread(ts)
			} else {
				if i == 0 {
					st.EnsureThread(ts)
				}
				st.Passthrough(normalize.PassthroughEvent(rec))
			}
		case typ == "assistant":
			n.assistant(st, f, ts)
		case typ == "user":
			n.user(st, f, ts)
		case typ == "result":
			n.result(st, f, ts)
		case model.IsCanonical(typ):
			st.PassCanonical(normalize.FromCanonical(f))
		default:
			if i == 0 {
				st.EnsureThread(ts)
			}
			st.Passthrough(normalize.PassthroughEvent(rec))
		}
	}
	return st.Finish(last)
}

// assistant fans an assistant message's content blocks out into canonical
// message and tool_call events. Usage is attached to the first text block.
func (n *Normalizer) assistant(st *normalize.State, f map[string]any, ts string) {
	msg := normalize.Obj(f, "message")
	usage := normalize.UsageFrom(normalize.Obj(msg, "usage"))
	for _, b := range normalize.List(msg, "content") {
		block, ok := b.(map[string]any)
		if !ok {
			continue
		}
		switch normalize.Str(block, "type") {
		case "text":
			st.Emit(model.TraceEvent{
				Type:      model.TypeMessage,
				Timestamp: ts,
				Content:   normalize.Str(block, "text"),
				Usage:     usage,
			})
			usage = nil
		case "tool_use":
			st.Emit(model.TraceEvent{
				Type:      model.TypeToolCall,
				Timestamp: ts,
				Tool:      normalize.Str(block, "name"),
				Input:     normalize.Obj(block, "input"),
				CallID:    normalize.Str(block, "id"),
			})
		}
	}
}

// user events carry tool_result blocks echoed back to the model.
func (n *Normalizer) user(st *normalize.State, f map[string]any, ts string) {
	msg := normalize.Obj(f, "message")
	for _, b := range normalize.List(msg, "content") {
		block, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if normalize.Str(block, "type") != "tool_result" {
			continue
		}
		status := "success"
		if isErr, _ := block["is_error"].(bool); isErr {
			status = "error"
		}
		st.Emit(model.TraceEvent{
			Type:      model.TypeToolResult,
			Timestamp: ts,
			Status:    status,
			Output:    blockText(block["content"]),
			CallID:    normalize.Str(block, "tool_use_id"),
		})
	}
}

// result is the terminal summary record: it closes the turn, carrying
// usage and cost, or fails it on a non-success subtype.
func (n *Normalizer) result(st *normalize.State, f map[string]any, ts string) {
	subtype := normalize.Str(f, "subtype")
	if subtype != "" && subtype != "success" {
		msg := normalize.Str(f, "result", "error")
		if msg == "" {
			msg = subtype
		}
		st.FailTurn(ts, msg)
		return
	}
	usage := normalize.UsageFrom(normalize.Obj(f, "usage"))
	cost, _ := normalize.Num(f, "total_cost_usd", "cost_usd")
	st.EnsureTurn(ts)
	st.CloseTurn(ts, usage, cost)
}

// blockText flattens a tool_result content value, which may be a plain
// string or a list of typed text parts.
func blockText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var out string
		for _, p := range c {
			if part, ok := p.(map[string]any); ok && normalize.Str(part, "type") == "text" {
				out += normalize.Str(part, "text")
			}
		}
		return out
	}
	return ""
}
