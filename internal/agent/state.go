package agent

import "time"

// Status is the lifecycle state of one agent as seen through hook events.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusError   Status = "error"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// Icon returns the two-character marker used by the agents panel.
func (s Status) Icon() string {
	switch s {
	case StatusRunning:
		return ">>"
	case StatusError:
		return "!!"
	default:
		return "--"
	}
}

// State is the folded view of one agent's events. Entries are never
// removed: the map reflects every agent ever seen, not only live ones.
type State struct {
	AgentID     string    `json:"agent_id" yaml:"agent_id"`
	Status      Status    `json:"status" yaml:"status"`
	CurrentTask string    `json:"current_task,omitempty" yaml:"current_task,omitempty"`
	CurrentTool string    `json:"current_tool,omitempty" yaml:"current_tool,omitempty"`
	ErrorCount  int       `json:"error_count" yaml:"error_count"`
	EventCount  int       `json:"event_count" yaml:"event_count"`
	LastEvent   time.Time `json:"last_event,omitempty" yaml:"last_event,omitempty"`
}

// ErrorRecord is a classified Error event kept in the recent-errors history.
type ErrorRecord struct {
	AgentID   string    `json:"agent_id" yaml:"agent_id"`
	TaskID    string    `json:"task_id" yaml:"task_id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Message   string    `json:"message" yaml:"message"`
	Analysis  `yaml:",inline"`
}
