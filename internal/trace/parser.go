// Package trace turns raw newline-delimited backend output into loosely
// typed records. Parsing never fails: a line that does not decode becomes a
// pass-through record carrying the original text and a malformed marker.
package trace

import (
	"encoding/json"
	"strings"

	"github.com/crimson-sun/traceval/internal/model"
)

// Parse splits raw text on line breaks, discards blank lines, and decodes
// each remaining line as one JSON object. Output is order-preserving, one
// record per non-blank input line.
func Parse(raw string) []model.RawRecord {
	lines := strings.Split(raw, "\n")
	records := make([]model.RawRecord, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, parseLine(line))
	}
	return records
}

func parseLine(line string) model.RawRecord {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
		return model.RawRecord{Raw: line, Malformed: true}
	}
	return model.RawRecord{Raw: line, Fields: fields}
}
