// Package tasks parses the hierarchical TASKS.md document into phases and tasks.
package tasks

import "fmt"

// Status is the lifecycle state of a single task line.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusBlocked    Status = "blocked"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// Icon returns the short bracketed marker used by list renderers.
func (s Status) Icon() string {
	switch s {
	case StatusCompleted:
		return "[x]"
	case StatusInProgress:
		return "[/]"
	case StatusFailed:
		return "[!]"
	case StatusBlocked:
		return "[B]"
	default:
		return "[ ]"
	}
}

// statusTokens maps the literal document tokens to statuses. Matching is
// case-sensitive: "[X]" or "[inprogress]" are not recognized.
var statusTokens = map[string]Status{
	" ":          StatusPending,
	"InProgress": StatusInProgress,
	"x":          StatusCompleted,
	"Failed":     StatusFailed,
	"Blocked":    StatusBlocked,
}

// Task is one unit of work inside a phase.
type Task struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
	Agent  string `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// Phase is a named group of tasks in document order.
type Phase struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// Completed returns the number of completed tasks in the phase.
func (p *Phase) Completed() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Progress returns completed/total for the phase, or 0 for an empty phase.
func (p *Phase) Progress() float64 {
	if len(p.Tasks) == 0 {
		return 0
	}
	return float64(p.Completed()) / float64(len(p.Tasks))
}

// Document is the parsed form of a task document with derived counters.
type Document struct {
	Phases         []Phase
	TotalTasks     int
	CompletedTasks int
	FailedTasks    int
}

// Progress returns completed/total across all phases, or 0 with no tasks.
func (d *Document) Progress() float64 {
	if d.TotalTasks == 0 {
		return 0
	}
	return float64(d.CompletedTasks) / float64(d.TotalTasks)
}

// recount derives the aggregate counters from the phase list.
func (d *Document) recount() {
	d.TotalTasks, d.CompletedTasks, d.FailedTasks = 0, 0, 0
	for _, p := range d.Phases {
		for _, t := range p.Tasks {
			d.TotalTasks++
			switch t.Status {
			case StatusCompleted:
				d.CompletedTasks++
			case StatusFailed:
				d.FailedTasks++
			}
		}
	}
}

// DocumentFormatError reports that no phase/task structure was recognized.
type DocumentFormatError struct {
	Lines  int
	Reason string
}

func (e *DocumentFormatError) Error() string {
	return fmt.Sprintf("task document format: %s (%d lines scanned)", e.Reason, e.Lines)
}
