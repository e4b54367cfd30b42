// Package state composes the parsed task document and the folded hook events
// into the single dashboard snapshot read by renderers.
//
// A Dashboard has exactly one owner goroutine. Change notifications arrive
// over a channel and are applied by that owner; nothing here locks.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/hooks"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
	"github.com/Dicklesworthstone/agentboard/internal/tracker"
	"github.com/Dicklesworthstone/agentboard/internal/watcher"
)

// decodeErrorHistory is how many recent per-line decode failures are kept.
const decodeErrorHistory = 20

// Options configures a Dashboard.
type Options struct {
	TasksPath     string
	HooksDir      string
	ErrorCapacity int
	Logger        *slog.Logger
}

// Dashboard is the canonical in-memory state.
type Dashboard struct {
	tasksPath string
	hooksDir  string
	logger    *slog.Logger

	phases   []tasks.Phase
	items    []Item
	tasksErr error

	agents       *agent.Aggregator
	tailer       *hooks.Tailer
	decodeErrors *tracker.History[hooks.ParseError]
	decodeTotal  int
	hooksErr     error
}

// New returns an empty dashboard. Nothing is read until Load or a reload.
func New(opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		tasksPath:    opts.TasksPath,
		hooksDir:     opts.HooksDir,
		logger:       logger,
		agents:       agent.NewAggregator(opts.ErrorCapacity),
		tailer:       hooks.NewTailer(opts.HooksDir),
		decodeErrors: tracker.NewWithSize[hooks.ParseError](decodeErrorHistory),
	}
}

// Load creates a dashboard and performs the initial read of both sources.
// Read or parse failures leave the affected part empty; they are logged and
// remain available through TasksError and HooksError.
func Load(opts Options) *Dashboard {
	d := New(opts)
	if err := d.ReloadTasks(); err != nil {
		d.logger.Warn("initial task document load failed", "path", d.tasksPath, "error", err)
	}
	if err := d.ReplayEvents(); err != nil {
		d.logger.Warn("initial hook replay failed", "dir", d.hooksDir, "error", err)
	}
	return d
}

// TasksPath returns the task document path.
func (d *Dashboard) TasksPath() string { return d.tasksPath }

// HooksDir returns the hook log directory.
func (d *Dashboard) HooksDir() string { return d.hooksDir }

// RebuildFromTasks replaces phases and tasks from document text. On a parse
// failure the previous phases are kept and the error is returned.
func (d *Dashboard) RebuildFromTasks(text string) error {
	doc, err := tasks.Parse(text)
	if err != nil {
		d.tasksErr = err
		return err
	}
	d.phases = doc.Phases
	d.tasksErr = nil
	d.rebuildIndex()
	d.logger.Debug("task document rebuilt", "phases", len(d.phases), "tasks", doc.TotalTasks)
	return nil
}

// ReloadTasks re-reads the task document from disk. An I/O failure leaves
// the current phases untouched.
func (d *Dashboard) ReloadTasks() error {
	data, err := os.ReadFile(d.tasksPath)
	if err != nil {
		d.tasksErr = err
		return fmt.Errorf("read task document: %w", err)
	}
	return d.RebuildFromTasks(string(data))
}

// IngestEvents folds events into agent state and the recent-error history.
// Phases are not touched.
func (d *Dashboard) IngestEvents(events []hooks.Event) {
	d.agents.Apply(events)
}

// PollEvents decodes lines appended to the hook logs since the last poll.
// A truncated or removed log triggers a full rebuild of agent state.
func (d *Dashboard) PollEvents() error {
	batch, err := d.tailer.Poll()
	if err != nil {
		d.hooksErr = err
		return err
	}
	d.applyBatch(batch)
	return nil
}

// ReplayEvents discards agent state and re-decodes every hook log.
func (d *Dashboard) ReplayEvents() error {
	batch, err := d.tailer.Replay()
	if err != nil {
		d.hooksErr = err
		return err
	}
	d.applyBatch(batch)
	return nil
}

func (d *Dashboard) applyBatch(b hooks.Batch) {
	d.hooksErr = nil
	if b.Reset {
		d.agents.Reset()
		d.decodeErrors.Clear()
		d.decodeTotal = 0
		d.logger.Debug("hook logs replayed", "files", b.Files)
	}
	d.IngestEvents(b.Events)
	for _, pe := range b.Errors {
		d.decodeErrors.Record(pe)
		d.logger.Debug("hook line rejected", "line", pe.Line, "reason", pe.Reason)
	}
	d.decodeTotal += len(b.Errors)
}

// ApplyChange re-reads the source named by c. The returned error is
// informational: state is left as it was for that source.
func (d *Dashboard) ApplyChange(c watcher.Change) error {
	switch c.Source {
	case watcher.SourceTasks:
		return d.ReloadTasks()
	case watcher.SourceHooks:
		return d.PollEvents()
	default:
		return fmt.Errorf("unknown change source %v", c.Source)
	}
}

// Reload re-reads both sources from scratch.
func (d *Dashboard) Reload() error {
	return errors.Join(d.ReloadTasks(), d.ReplayEvents())
}

// Phases returns the phases in document order. Callers must not modify them.
func (d *Dashboard) Phases() []tasks.Phase {
	return d.phases
}

// Counts returns total, completed and failed task counts.
func (d *Dashboard) Counts() (total, completed, failed int) {
	for _, p := range d.phases {
		for _, t := range p.Tasks {
			total++
			switch t.Status {
			case tasks.StatusCompleted:
				completed++
			case tasks.StatusFailed:
				failed++
			}
		}
	}
	return total, completed, failed
}

// OverallProgress returns completed/total across all phases, 0 without tasks.
func (d *Dashboard) OverallProgress() float64 {
	total, completed, _ := d.Counts()
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// Agents returns every agent ever seen, sorted by id.
func (d *Dashboard) Agents() []agent.State {
	return d.agents.Agents()
}

// Agent returns the state of one agent.
func (d *Dashboard) Agent(id string) (agent.State, bool) {
	return d.agents.Agent(id)
}

// AgentCount returns how many agents are in status s.
func (d *Dashboard) AgentCount(s agent.Status) int {
	return d.agents.CountByStatus(s)
}

// RecentErrors returns the bounded error history, oldest first.
func (d *Dashboard) RecentErrors() []agent.ErrorRecord {
	return d.agents.Errors()
}

// ErrorsFor returns recent errors raised by one agent.
func (d *Dashboard) ErrorsFor(agentID string) []agent.ErrorRecord {
	return d.agents.ErrorsFor(agentID)
}

// ErrorRuns returns the error history with consecutive repeats collapsed.
func (d *Dashboard) ErrorRuns() []tracker.Coalesced[agent.ErrorRecord] {
	return d.agents.ErrorRuns()
}

// DecodeErrors returns the total number of rejected hook lines since the
// last full replay and the most recent of them.
func (d *Dashboard) DecodeErrors() (int, []hooks.ParseError) {
	return d.decodeTotal, d.decodeErrors.All()
}

// TasksError returns the last task document read or parse failure, if any.
func (d *Dashboard) TasksError() error { return d.tasksErr }

// HooksError returns the last hook directory read failure, if any.
func (d *Dashboard) HooksError() error { return d.hooksErr }
