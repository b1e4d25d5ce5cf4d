package model

// Canonical event types. Anything outside this set is passed through
// unchanged; normalization never discards data.
const (
	TypeThreadStarted = "thread.started"
	TypeTurnStarted   = "turn.started"
	TypeTurnCompleted = "turn.completed"
	TypeTurnFailed    = "turn.failed"
	TypeToolCall      = "tool_call"
	TypeToolResult    = "tool_result"
	TypeMessage       = "message"
	TypeError         = "error"

	// TypeUnparsed marks a raw line that failed to decode. The original
	// text is retained in Content.
	TypeUnparsed = "unparsed"
)

// TraceEvent is the canonical, backend-independent representation of one
// occurrence within an agent execution trace. It is a tagged union: Type
// selects which of the variant fields are meaningful. Timestamp is an
// ISO-8601 string and may be empty; consumers must tolerate ties and
// missing values.
type TraceEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`

	// thread.started
	ThreadID string `json:"thread_id,omitempty"`

	// tool_call
	Tool   string         `json:"tool,omitempty"`
	Input  map[string]any `json:"input,omitempty"`
	CallID string         `json:"id,omitempty"`

	// tool_result
	Status     string  `json:"status,omitempty"`
	Output     string  `json:"output,omitempty"`
	DurationMS float64 `json:"duration_ms,omitempty"`

	// message
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`

	// turn.completed / message
	Usage *Usage  `json:"usage,omitempty"`
	Cost  float64 `json:"cost,omitempty"`

	// turn.failed / error
	Error *ErrorInfo `json:"error,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	// Raw retains the originally decoded record so pass-through events
	// lose nothing. Not serialized.
	Raw map[string]any `json:"-"`
}

// Usage holds token counts for one turn or message. Pointers distinguish
// "unknown" from an actual zero.
type Usage struct {
	InputTokens  *int `json:"input_tokens,omitempty"`
	OutputTokens *int `json:"output_tokens,omitempty"`
}

// ErrorInfo carries the error message of a failed turn or error event.
type ErrorInfo struct {
	Message string `json:"message"`
}

// IsCanonical reports whether typ belongs to the canonical event vocabulary.
func IsCanonical(typ string) bool {
	switch typ {
	case TypeThreadStarted, TypeTurnStarted, TypeTurnCompleted, TypeTurnFailed,
		TypeToolCall, TypeToolResult, TypeMessage, TypeError:
		return true
	}
	return false
}
