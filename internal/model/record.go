package model

// RawRecord is the parser's per-line output, consumed by the normalizers.
// Fields is nil when the line failed to decode; the original text is always
// retained in Raw.
type RawRecord struct {
	Raw       string
	Fields    map[string]any
	Malformed bool
}

// CommandRecord is derived from a tool_call event whose input carries
// command text. A tool_call without command-like input yields no record.
type CommandRecord struct {
	ID         string   `json:"id,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Command    string   `json:"command"`
	Status     string   `json:"status,omitempty"`
	DurationMS *float64 `json:"duration_ms,omitempty"`
}
