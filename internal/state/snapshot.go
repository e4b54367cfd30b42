package state

import (
	"time"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/hooks"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
)

// Snapshot is a detached copy of the dashboard for serialization.
type Snapshot struct {
	GeneratedAt     time.Time           `json:"generated_at" yaml:"generated_at"`
	TasksPath       string              `json:"tasks_path" yaml:"tasks_path"`
	HooksDir        string              `json:"hooks_dir" yaml:"hooks_dir"`
	TotalTasks      int                 `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks  int                 `json:"completed_tasks" yaml:"completed_tasks"`
	FailedTasks     int                 `json:"failed_tasks" yaml:"failed_tasks"`
	OverallProgress float64             `json:"overall_progress" yaml:"overall_progress"`
	Phases          []tasks.Phase       `json:"phases" yaml:"phases"`
	Agents          []agent.State       `json:"agents" yaml:"agents"`
	RecentErrors    []agent.ErrorRecord `json:"recent_errors" yaml:"recent_errors"`
	DecodeErrors    int                 `json:"decode_errors" yaml:"decode_errors"`
	RejectedLines   []hooks.ParseError  `json:"rejected_lines,omitempty" yaml:"rejected_lines,omitempty"`
	TasksError      string              `json:"tasks_error,omitempty" yaml:"tasks_error,omitempty"`
	HooksError      string              `json:"hooks_error,omitempty" yaml:"hooks_error,omitempty"`
}

// Snapshot returns a deep copy of the current state.
func (d *Dashboard) Snapshot() Snapshot {
	total, completed, failed := d.Counts()
	decodeTotal, rejected := d.DecodeErrors()

	phases := make([]tasks.Phase, len(d.phases))
	for i, p := range d.phases {
		phases[i] = p
		phases[i].Tasks = append([]tasks.Task(nil), p.Tasks...)
	}

	s := Snapshot{
		GeneratedAt:     time.Now(),
		TasksPath:       d.tasksPath,
		HooksDir:        d.hooksDir,
		TotalTasks:      total,
		CompletedTasks:  completed,
		FailedTasks:     failed,
		OverallProgress: d.OverallProgress(),
		Phases:          phases,
		Agents:          d.Agents(),
		RecentErrors:    d.RecentErrors(),
		DecodeErrors:    decodeTotal,
		RejectedLines:   rejected,
	}
	if d.tasksErr != nil {
		s.TasksError = d.tasksErr.Error()
	}
	if d.hooksErr != nil {
		s.HooksError = d.hooksErr.Error()
	}
	return s
}
