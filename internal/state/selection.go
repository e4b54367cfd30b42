package state

import "github.com/Dicklesworthstone/agentboard/internal/tasks"

// ItemKind distinguishes phase headers from task rows in the flat list.
type ItemKind int

const (
	ItemPhase ItemKind = iota
	ItemTask
)

// Item is one selectable row. TaskIndex is -1 for phase headers.
type Item struct {
	Kind       ItemKind
	PhaseIndex int
	TaskIndex  int
}

// TaskRef addresses a task by position in the phase list.
type TaskRef struct {
	PhaseIndex int
	TaskIndex  int
}

// Anchor identifies a row by ids so a selection survives reparses that
// shift positions. TaskID is empty for a phase header.
type Anchor struct {
	PhaseID string
	TaskID  string
}

func (d *Dashboard) rebuildIndex() {
	n := len(d.phases)
	for _, p := range d.phases {
		n += len(p.Tasks)
	}
	items := make([]Item, 0, n)
	for pi, p := range d.phases {
		items = append(items, Item{Kind: ItemPhase, PhaseIndex: pi, TaskIndex: -1})
		for ti := range p.Tasks {
			items = append(items, Item{Kind: ItemTask, PhaseIndex: pi, TaskIndex: ti})
		}
	}
	d.items = items
}

// Flatten returns one item per phase header followed by its tasks, in
// document order.
func (d *Dashboard) Flatten() []Item {
	out := make([]Item, len(d.items))
	copy(out, d.items)
	return out
}

// TotalItems returns the length of the flat list.
func (d *Dashboard) TotalItems() int {
	return len(d.items)
}

// ItemAt returns the flat item at i.
func (d *Dashboard) ItemAt(i int) (Item, bool) {
	if i < 0 || i >= len(d.items) {
		return Item{}, false
	}
	return d.items[i], true
}

// Resolve maps a flat index to a task. Headers and out-of-range indexes
// report no task.
func (d *Dashboard) Resolve(i int) (TaskRef, bool) {
	it, ok := d.ItemAt(i)
	if !ok || it.Kind != ItemTask {
		return TaskRef{}, false
	}
	return TaskRef{PhaseIndex: it.PhaseIndex, TaskIndex: it.TaskIndex}, true
}

// Task returns the task addressed by ref.
func (d *Dashboard) Task(ref TaskRef) (tasks.Task, bool) {
	if ref.PhaseIndex < 0 || ref.PhaseIndex >= len(d.phases) {
		return tasks.Task{}, false
	}
	p := d.phases[ref.PhaseIndex]
	if ref.TaskIndex < 0 || ref.TaskIndex >= len(p.Tasks) {
		return tasks.Task{}, false
	}
	return p.Tasks[ref.TaskIndex], true
}

// SelectedTask resolves i and returns the task there.
func (d *Dashboard) SelectedTask(i int) (tasks.Task, bool) {
	ref, ok := d.Resolve(i)
	if !ok {
		return tasks.Task{}, false
	}
	return d.Task(ref)
}

// AnchorAt returns the id-based anchor of row i.
func (d *Dashboard) AnchorAt(i int) (Anchor, bool) {
	it, ok := d.ItemAt(i)
	if !ok {
		return Anchor{}, false
	}
	p := d.phases[it.PhaseIndex]
	a := Anchor{PhaseID: p.ID}
	if it.Kind == ItemTask {
		a.TaskID = p.Tasks[it.TaskIndex].ID
	}
	return a, true
}

// IndexOf returns the flat index of the row matching a, or -1.
func (d *Dashboard) IndexOf(a Anchor) int {
	for i, it := range d.items {
		p := d.phases[it.PhaseIndex]
		if p.ID != a.PhaseID {
			continue
		}
		if it.Kind == ItemPhase && a.TaskID == "" {
			return i
		}
		if it.Kind == ItemTask && p.Tasks[it.TaskIndex].ID == a.TaskID {
			return i
		}
	}
	return -1
}

// Cursor is a selection index over the flat list. Movement clamps at the
// boundaries instead of wrapping.
type Cursor struct {
	index int
}

// Index returns the current position.
func (c *Cursor) Index() int {
	return c.index
}

// Next moves down one row unless already on the last of total rows.
func (c *Cursor) Next(total int) {
	if c.index < total-1 {
		c.index++
	}
}

// Prev moves up one row unless already at the top.
func (c *Cursor) Prev() {
	if c.index > 0 {
		c.index--
	}
}

// First moves to the top.
func (c *Cursor) First() {
	c.index = 0
}

// Last moves to the final row.
func (c *Cursor) Last(total int) {
	c.index = total - 1
	c.Clamp(total)
}

// Set moves to i, clamped into range.
func (c *Cursor) Set(i, total int) {
	c.index = i
	c.Clamp(total)
}

// Clamp forces the position into [0, total-1]; an empty list pins it at 0.
func (c *Cursor) Clamp(total int) {
	if c.index > total-1 {
		c.index = total - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}

// Reanchor moves c to the row matching a after the list changed. When the
// row vanished the cursor is only clamped.
func (d *Dashboard) Reanchor(c *Cursor, a Anchor) {
	if i := d.IndexOf(a); i >= 0 {
		c.index = i
		return
	}
	c.Clamp(d.TotalItems())
}
