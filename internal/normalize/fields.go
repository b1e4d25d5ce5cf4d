package normalize

import "github.com/crimson-sun/traceval/internal/model"

// Loose accessors over decoded JSON objects. Missing or mistyped fields
// yield zero values; normalizers must never fail on unexpected shapes.

// Str returns the first non-empty string value among keys.
func Str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Num returns the first numeric value among keys.
func Num(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// Obj returns m[key] as an object, or nil.
func Obj(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

// List returns m[key] as a slice, or nil.
func List(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

// IntPtr converts a numeric field to *int, nil when absent. Keeps the
// unknown/zero distinction intact.
func IntPtr(m map[string]any, keys ...string) *int {
	if f, ok := Num(m, keys...); ok {
		n := int(f)
		return &n
	}
	return nil
}

// Timestamp returns the record's timestamp under common field names.
func Timestamp(m map[string]any) string {
	return Str(m, "timestamp", "ts", "time", "created_at")
}

// UsageFrom reads a usage-shaped object, accepting both the
// provider-neutral and the alternate field naming. Returns nil when
// neither count is present.
func UsageFrom(m map[string]any) *model.Usage {
	if m == nil {
		return nil
	}
	in := IntPtr(m, "input_tokens", "prompt_tokens", "prompt_token_count")
	out := IntPtr(m, "output_tokens", "completion_tokens", "candidates_token_count")
	if in == nil && out == nil {
		return nil
	}
	return &model.Usage{InputTokens: in, OutputTokens: out}
}

// FromCanonical maps an already-canonical decoded record onto a TraceEvent.
func FromCanonical(fields map[string]any) model.TraceEvent {
	ev := model.TraceEvent{
		Type:      Str(fields, "type"),
		Timestamp: Timestamp(fields),
		ThreadID:  Str(fields, "thread_id"),
		Tool:      Str(fields, "tool"),
		Input:     Obj(fields, "input"),
		CallID:    Str(fields, "id"),
		Status:    Str(fields, "status"),
		Output:    Str(fields, "output"),
		Content:   Str(fields, "content"),
		Metadata:  Obj(fields, "metadata"),
		Usage:     UsageFrom(Obj(fields, "usage")),
		Raw:       fields,
	}
	if d, ok := Num(fields, "duration_ms", "duration"); ok {
		ev.DurationMS = d
	}
	if c, ok := Num(fields, "cost"); ok {
		ev.Cost = c
	}
	ev.FinishReason = Str(fields, "finish_reason")
	if errObj := Obj(fields, "error"); errObj != nil {
		ev.Error = &model.ErrorInfo{Message: Str(errObj, "message")}
	} else if ev.Type == model.TypeError || ev.Type == model.TypeTurnFailed {
		if msg := Str(fields, "message"); msg != "" {
			ev.Error = &model.ErrorInfo{Message: msg}
		}
	}
	return ev
}

// PassthroughEvent wraps an unrecognized record so it survives
// normalization verbatim.
func PassthroughEvent(rec model.RawRecord) model.TraceEvent {
	if rec.Malformed {
		return model.TraceEvent{Type: model.TypeUnparsed, Content: rec.Raw}
	}
	return model.TraceEvent{
		Type:      Str(rec.Fields, "type"),
		Timestamp: Timestamp(rec.Fields),
		Raw:       rec.Fields,
	}
}
