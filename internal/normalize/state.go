package normalize

import (
	"fmt"
	"time"

	"github.com/crimson-sun/traceval/internal/model"
)

// State threads thread/turn boundary tracking through one normalization
// pass. It accumulates output events and guarantees balanced boundaries:
// exactly one thread.started, and a turn close for every turn open, even
// when the source never emitted them.
type State struct {
	Source     string
	ThreadID   string
	threadOpen bool
	turnOpen   bool
	out        []model.TraceEvent
}

// NewState creates a State for one pass over a single backend's output.
func NewState(source string) *State {
	return &State{Source: source}
}

// SetThreadID records the session/conversation identifier from the source.
// Only the first non-empty value wins.
func (s *State) SetThreadID(id string) {
	if s.ThreadID == "" {
		s.ThreadID = id
	}
}

// EnsureThread emits a synthetic thread.started if none has been emitted
// yet. When the source never provided an identifier, one is synthesized
// from the source name and the current time.
func (s *State) EnsureThread(ts string) {
	if s.threadOpen {
		return
	}
	if s.ThreadID == "" {
		s.ThreadID = fmt.Sprintf("%s-%d", s.Source, time.Now().UnixMilli())
	}
	s.threadOpen = true
	s.out = append(s.out, model.TraceEvent{
		Type:      model.TypeThreadStarted,
		Timestamp: ts,
		ThreadID:  s.ThreadID,
	})
}

// EnsureTurn emits a synthetic turn.started (after ensuring the thread)
// unless a turn is already open.
func (s *State) EnsureTurn(ts string) {
	s.EnsureThread(ts)
	if s.turnOpen {
		return
	}
	s.turnOpen = true
	s.out = append(s.out, model.TraceEvent{Type: model.TypeTurnStarted, Timestamp: ts})
}

// CloseTurn emits turn.completed and resets the turn so a subsequent step
// can open a new one. No-op when no turn is open.
func (s *State) CloseTurn(ts string, usage *model.Usage, cost float64) {
	if !s.turnOpen {
		return
	}
	s.turnOpen = false
	s.out = append(s.out, model.TraceEvent{
		Type:      model.TypeTurnCompleted,
		Timestamp: ts,
		Usage:     usage,
		Cost:      cost,
	})
}

// FailTurn emits turn.failed and resets the turn.
func (s *State) FailTurn(ts, message string) {
	s.EnsureTurn(ts)
	s.turnOpen = false
	s.out = append(s.out, model.TraceEvent{
		Type:      model.TypeTurnFailed,
		Timestamp: ts,
		Error:     &model.ErrorInfo{Message: message},
	})
}

// Emit appends a canonical event, opening thread/turn boundaries first for
// substantive event types.
func (s *State) Emit(ev model.TraceEvent) {
	switch ev.Type {
	case model.TypeToolCall, model.TypeToolResult, model.TypeMessage:
		s.EnsureTurn(ev.Timestamp)
	case model.TypeError:
		s.EnsureThread(ev.Timestamp)
	}
	s.out = append(s.out, ev)
}

// Passthrough forwards an event verbatim without touching boundary state.
// Used for unrecognized native shapes and unparsed lines.
func (s *State) Passthrough(ev model.TraceEvent) {
	s.out = append(s.out, ev)
}

// PassCanonical forwards an already-canonical record unchanged while
// keeping boundary state consistent, so re-normalizing a canonical stream
// is a no-op.
func (s *State) PassCanonical(ev model.TraceEvent) {
	switch ev.Type {
	case model.TypeThreadStarted:
		s.SetThreadID(ev.ThreadID)
		s.threadOpen = true
	case model.TypeTurnStarted:
		s.EnsureThread(ev.Timestamp)
		s.turnOpen = true
	case model.TypeTurnCompleted, model.TypeTurnFailed:
		// A bare close still needs its open so boundaries balance.
		s.EnsureTurn(ev.Timestamp)
		s.turnOpen = false
	case model.TypeError:
		s.EnsureThread(ev.Timestamp)
	case model.TypeToolCall, model.TypeToolResult, model.TypeMessage:
		s.EnsureTurn(ev.Timestamp)
	}
	s.out = append(s.out, ev)
}

// Finish closes any dangling turn and returns the accumulated events.
func (s *State) Finish(ts string) []model.TraceEvent {
	s.CloseTurn(ts, nil, 0)
	return s.out
}
