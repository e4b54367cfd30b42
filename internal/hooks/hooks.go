// Package hooks decodes the JSON Lines event stream written by agent hook scripts.
package hooks

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind identifies the lifecycle moment an event describes.
type EventKind string

const (
	KindAgentStart EventKind = "agent_start"
	KindAgentEnd   EventKind = "agent_end"
	KindToolStart  EventKind = "tool_start"
	KindToolEnd    EventKind = "tool_end"
	KindError      EventKind = "error"
)

// String returns the wire tag of the kind.
func (k EventKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the five known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindAgentStart, KindAgentEnd, KindToolStart, KindToolEnd, KindError:
		return true
	}
	return false
}

// UnmarshalJSON accepts only the known kind tags.
func (k *EventKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("event_type: %w", err)
	}
	kind := EventKind(s)
	if !kind.Valid() {
		return fmt.Errorf("unknown event_type %q", s)
	}
	*k = kind
	return nil
}

// Event is one decoded hook record. ToolName and ErrorMessage are empty
// when the line did not carry them.
type Event struct {
	Kind         EventKind `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	AgentID      string    `json:"agent_id"`
	TaskID       string    `json:"task_id"`
	SessionID    string    `json:"session_id"`
	ToolName     string    `json:"tool_name,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// ParseError describes a single line that could not be decoded.
type ParseError struct {
	Line    int    `json:"line" yaml:"line"`
	Content string `json:"content" yaml:"content"`
	Reason  string `json:"reason" yaml:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Result holds the decoded events in source order plus per-line failures.
type Result struct {
	Events []Event
	Errors []ParseError
}

// ForAgent returns the events whose agent id equals agentID, in order.
func ForAgent(events []Event, agentID string) []Event {
	return filter(events, func(e Event) bool { return e.AgentID == agentID })
}

// ForSession returns the events whose session id equals sessionID, in order.
func ForSession(events []Event, sessionID string) []Event {
	return filter(events, func(e Event) bool { return e.SessionID == sessionID })
}

func filter(events []Event, keep func(Event) bool) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
