package analyze

import "github.com/crimson-sun/traceval/internal/model"

// Token usage extraction is a fallback chain: ordered strategies tried in
// sequence, stopping at the first that finds data. Each returns an explicit
// not-found rather than zero; absence of token data is never conflated
// with zero usage.
var tokenExtractors = []struct {
	source  string
	extract func([]model.TraceEvent) (model.TokenReport, bool)
}{
	{"tool_metadata", metadataTokens},
	{"usage", usageTokens},
	{"summary", summaryTokens},
}

// ExtractTokens runs the fallback chain over the trace. When no strategy
// yields data, all counts stay nil.
func ExtractTokens(events []model.TraceEvent) model.TokenReport {
	for _, e := range tokenExtractors {
		if report, ok := e.extract(events); ok {
			report.Source = e.source
			return report
		}
	}
	return model.TokenReport{}
}

// metadataTokens reads explicit metadata.tokens totals on tool calls.
func metadataTokens(events []model.TraceEvent) (model.TokenReport, bool) {
	total, found := 0, false
	for _, ev := range events {
		if ev.Type != model.TypeToolCall || ev.Metadata == nil {
			continue
		}
		switch v := ev.Metadata["tokens"].(type) {
		case float64:
			total += int(v)
			found = true
		case map[string]any:
			for _, k := range []string{"input", "output", "total"} {
				if f, ok := v[k].(float64); ok {
					total += int(f)
					found = true
				}
			}
		}
	}
	if !found {
		return model.TokenReport{}, false
	}
	return model.TokenReport{TotalTokens: &total}, true
}

// usageTokens sums usage-shaped fields across all events. Normalizers fold
// both the provider-neutral and the alternate naming into model.Usage, and
// passed-through raw records are checked for an embedded usage object.
func usageTokens(events []model.TraceEvent) (model.TokenReport, bool) {
	in, out, found := 0, 0, false
	add := func(u *model.Usage) {
		if u == nil {
			return
		}
		if u.InputTokens != nil {
			in += *u.InputTokens
			found = true
		}
		if u.OutputTokens != nil {
			out += *u.OutputTokens
			found = true
		}
	}
	for _, ev := range events {
		add(ev.Usage)
		if ev.Usage == nil && ev.Raw != nil {
			if usage, ok := ev.Raw["usage"].(map[string]any); ok {
				add(rawUsage(usage))
			}
		}
	}
	if !found {
		return model.TokenReport{}, false
	}
	total := in + out
	return model.TokenReport{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}, true
}

// summaryTokens reads explicit input_tokens/output_tokens fields off a
// terminal summary record that was passed through unrecognized.
func summaryTokens(events []model.TraceEvent) (model.TokenReport, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		raw := events[i].Raw
		if raw == nil {
			continue
		}
		u := rawUsage(raw)
		if u == nil {
			continue
		}
		in, out := 0, 0
		if u.InputTokens != nil {
			in = *u.InputTokens
		}
		if u.OutputTokens != nil {
			out = *u.OutputTokens
		}
		total := in + out
		return model.TokenReport{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}, true
	}
	return model.TokenReport{}, false
}

// rawUsage reads token counts out of a loose object, accepting both the
// provider-neutral and the alternate field naming.
func rawUsage(m map[string]any) *model.Usage {
	pick := func(keys ...string) *int {
		for _, k := range keys {
			if f, ok := m[k].(float64); ok {
				n := int(f)
				return &n
			}
		}
		return nil
	}
	in := pick("input_tokens", "prompt_tokens")
	out := pick("output_tokens", "completion_tokens")
	if in == nil && out == nil {
		return nil
	}
	return &model.Usage{InputTokens: in, OutputTokens: out}
}
