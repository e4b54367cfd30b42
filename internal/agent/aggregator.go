package agent

import (
	"sort"

	"github.com/Dicklesworthstone/agentboard/internal/hooks"
	"github.com/Dicklesworthstone/agentboard/internal/tracker"
)

// DefaultErrorCapacity is the number of recent errors kept when no
// capacity is configured.
const DefaultErrorCapacity = tracker.DefaultMaxSize

// Aggregator folds hook events into per-agent state and a bounded history
// of classified errors. It is not safe for concurrent mutation; one owner
// applies events.
type Aggregator struct {
	agents map[string]*State
	errors *tracker.History[ErrorRecord]
}

// NewAggregator returns an empty aggregator keeping up to capacity errors.
func NewAggregator(capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultErrorCapacity
	}
	return &Aggregator{
		agents: make(map[string]*State),
		errors: tracker.NewWithSize[ErrorRecord](capacity),
	}
}

// Apply folds events in the order given.
func (a *Aggregator) Apply(events []hooks.Event) {
	for _, ev := range events {
		a.apply(ev)
	}
}

func (a *Aggregator) apply(ev hooks.Event) {
	st, ok := a.agents[ev.AgentID]
	if !ok {
		st = &State{AgentID: ev.AgentID, Status: StatusIdle}
		a.agents[ev.AgentID] = st
	}
	st.EventCount++
	if ev.Timestamp.After(st.LastEvent) {
		st.LastEvent = ev.Timestamp
	}

	switch ev.Kind {
	case hooks.KindAgentStart:
		st.Status = StatusRunning
		st.CurrentTask = ""
		st.CurrentTool = ""

	case hooks.KindToolStart:
		st.Status = StatusRunning
		st.CurrentTool = ev.ToolName
		st.CurrentTask = ev.TaskID

	case hooks.KindToolEnd:
		// The task stays set: the agent is still working on it.
		st.CurrentTool = ""

	case hooks.KindAgentEnd:
		st.Status = StatusIdle
		st.CurrentTask = ""
		st.CurrentTool = ""

	case hooks.KindError:
		st.Status = StatusError
		st.ErrorCount++
		a.errors.Record(ErrorRecord{
			AgentID:   ev.AgentID,
			TaskID:    ev.TaskID,
			Timestamp: ev.Timestamp,
			Message:   ev.ErrorMessage,
			Analysis:  Classify(ev.ErrorMessage),
		})
	}
}

// Reset drops all agents and recorded errors, keeping the capacity.
func (a *Aggregator) Reset() {
	a.agents = make(map[string]*State)
	a.errors.Clear()
}

// Agent returns a copy of the state for id.
func (a *Aggregator) Agent(id string) (State, bool) {
	st, ok := a.agents[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Len returns the number of agents seen.
func (a *Aggregator) Len() int {
	return len(a.agents)
}

// Agents returns copies of every agent state sorted by agent id.
func (a *Aggregator) Agents() []State {
	out := make([]State, 0, len(a.agents))
	for _, st := range a.agents {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// Errors returns the recent errors, oldest first.
func (a *Aggregator) Errors() []ErrorRecord {
	return a.errors.All()
}

// ErrorsFor returns the recent errors raised by agentID, oldest first.
func (a *Aggregator) ErrorsFor(agentID string) []ErrorRecord {
	return a.errors.Filter(func(r ErrorRecord) bool { return r.AgentID == agentID })
}

// ErrorRuns collapses consecutive identical errors from the same agent.
func (a *Aggregator) ErrorRuns() []tracker.Coalesced[ErrorRecord] {
	return a.errors.Coalesce(func(r ErrorRecord) string { return r.AgentID + "\x00" + r.Message })
}

// ErrorCapacity returns the maximum number of retained errors.
func (a *Aggregator) ErrorCapacity() int {
	return a.errors.Cap()
}

// CountByStatus returns how many agents are currently in status s.
func (a *Aggregator) CountByStatus(s Status) int {
	n := 0
	for _, st := range a.agents {
		if st.Status == s {
			n++
		}
	}
	return n
}
