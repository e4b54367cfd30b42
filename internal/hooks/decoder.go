package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// wireEvent mirrors Event but keeps the timestamp as a raw string so a
// missing value can be reported by name.
type wireEvent struct {
	Kind         *EventKind `json:"event_type"`
	Timestamp    string     `json:"timestamp"`
	AgentID      string     `json:"agent_id"`
	TaskID       string     `json:"task_id"`
	SessionID    string     `json:"session_id"`
	ToolName     *string    `json:"tool_name"`
	ErrorMessage *string    `json:"error_message"`
}

// Decode parses text as JSON Lines. Blank lines are skipped; every other
// line yields either one Event or one ParseError, so the two slices together
// account for all non-blank lines.
func Decode(text string) Result {
	return decodeFrom(text, 0)
}

// DecodeFile reads and decodes the log at path. A missing file is returned
// as an error, distinct from per-line decode failures.
func DecodeFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read hook log: %w", err)
	}
	return Decode(string(data)), nil
}

// decodeFrom decodes text whose first line is line number offset+1.
func decodeFrom(text string, offset int) Result {
	var res Result
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		ev, err := DecodeLine(line)
		if err != nil {
			res.Errors = append(res.Errors, ParseError{
				Line:    offset + i + 1,
				Content: line,
				Reason:  err.Error(),
			})
			continue
		}
		res.Events = append(res.Events, ev)
	}
	return res
}

// DecodeLine decodes a single JSON object into an Event.
func DecodeLine(line string) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return Event{}, err
	}

	switch {
	case w.Kind == nil:
		return Event{}, missingField("event_type")
	case w.Timestamp == "":
		return Event{}, missingField("timestamp")
	case w.AgentID == "":
		return Event{}, missingField("agent_id")
	case w.TaskID == "":
		return Event{}, missingField("task_id")
	case w.SessionID == "":
		return Event{}, missingField("session_id")
	}

	ev := Event{
		Kind:      *w.Kind,
		AgentID:   w.AgentID,
		TaskID:    w.TaskID,
		SessionID: w.SessionID,
	}
	if err := ev.Timestamp.UnmarshalText([]byte(w.Timestamp)); err != nil {
		return Event{}, fmt.Errorf("timestamp: %w", err)
	}
	if w.ToolName != nil {
		ev.ToolName = *w.ToolName
	}
	if w.ErrorMessage != nil {
		ev.ErrorMessage = *w.ErrorMessage
	}
	return ev, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
