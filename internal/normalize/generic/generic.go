// Package generic normalizes sources that already speak the canonical
// vocabulary, or that we have no dedicated mapping for. Canonical events
// pass through unchanged; everything else is forwarded verbatim with
// boundary events synthesized around it.
package generic

import (
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
)

func init() {
	normalize.Register("generic", func() normalize.Normalizer {
		return &Normalizer{}
	})
}

// Normalizer is the canonical pass-through strategy.
type Normalizer struct{}

func (n *Normalizer) Normalize(records []model.RawRecord) []model.TraceEvent {
	if len(records) == 0 {
		return nil
	}
	st := normalize.NewState("generic")
	var last string
	for i, rec := range records {
		if rec.Malformed {
			if i == 0 {
				st.EnsureThread("")
			}
			st.Passthrough(normalize.PassthroughEvent(rec))
			continue
		}
		ts := normalize.Timestamp(rec.Fields)
		if ts != "" {
			last = ts
		}
		typ := normalize.Str(rec.Fields, "type")
		if i == 0 && typ != model.TypeThreadStarted {
			st.EnsureThread(ts)
		}
		if model.IsCanonical(typ) {
			st.PassCanonical(normalize.FromCanonical(rec.Fields))
			continue
		}
		st.Passthrough(normalize.PassthroughEvent(rec))
	}
	return st.Finish(last)
}
