package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/agentboard/internal/state"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
	"github.com/Dicklesworthstone/agentboard/internal/tui/layout"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
)

func taskListConfig() PanelConfig {
	return PanelConfig{
		ID:        "tasks",
		Title:     "Tasks",
		MinWidth:  30,
		MinHeight: 5,
	}
}

// TaskListPanel shows phases with progress and their tasks, one row per
// flattened item.
type TaskListPanel struct {
	PanelBase
	phases    []tasks.Phase
	items     []state.Item
	cursor    int
	offset    int
	showAgent bool
	stale     bool
}

// NewTaskListPanel creates a new task list panel
func NewTaskListPanel(t theme.Theme) *TaskListPanel {
	return &TaskListPanel{PanelBase: NewPanelBase(taskListConfig(), t)}
}

// SetData updates the rows and the highlighted index. stale marks that the
// document on disk failed to parse and the rows are from the last good read.
func (p *TaskListPanel) SetData(phases []tasks.Phase, items []state.Item, cursor int, stale bool) {
	p.phases = phases
	p.items = items
	p.cursor = cursor
	p.stale = stale
}

// SetShowAgent toggles the assigned-agent column
func (p *TaskListPanel) SetShowAgent(show bool) {
	p.showAgent = show
}

// View renders the panel
func (p *TaskListPanel) View() string {
	title := p.Config().Title
	if p.stale {
		title += " (stale)"
	}
	if len(p.items) == 0 {
		return p.Frame(title, p.Empty("No phases found"))
	}

	h := p.ContentHeight()
	p.offset = scrollOffset(p.offset, p.cursor, h, len(p.items))
	end := p.offset + h
	if end > len(p.items) {
		end = len(p.items)
	}

	lines := make([]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		it := p.items[i]
		selected := i == p.cursor
		var row string
		if it.Kind == state.ItemPhase {
			row = p.renderPhaseRow(&p.phases[it.PhaseIndex], selected)
		} else {
			row = p.renderTaskRow(p.phases[it.PhaseIndex].Tasks[it.TaskIndex], selected)
		}
		lines = append(lines, row)
	}
	return p.Frame(title, strings.Join(lines, "\n"))
}

func (p *TaskListPanel) marker(selected bool) string {
	if selected {
		return lipgloss.NewStyle().Foreground(p.theme.Pink).Bold(true).Render("▸")
	}
	return " "
}

func (p *TaskListPanel) renderPhaseRow(ph *tasks.Phase, selected bool) string {
	t := p.theme
	cw := p.ContentWidth()

	pct := fmt.Sprintf("%3d%%", int(ph.Progress()*100+0.5))
	count := fmt.Sprintf("%d/%d", ph.Completed(), len(ph.Tasks))
	barWidth := 10
	if cw < 40 {
		barWidth = 0
	}
	// marker, space, name, space, bar, space, count, space, pct
	nameWidth := cw - 2 - len(pct) - len(count) - 2
	if barWidth > 0 {
		nameWidth -= barWidth + 1
	}
	if nameWidth < 4 {
		nameWidth = 4
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Blue)
	parts := []string{
		p.marker(selected),
		nameStyle.Render(layout.PadRight(ph.ID+" "+ph.Name, nameWidth)),
	}
	if barWidth > 0 {
		filled, empty := layout.ProgressBar(ph.Progress(), barWidth)
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Green).Render(filled)+
			lipgloss.NewStyle().Foreground(t.Surface1).Render(empty))
	}
	parts = append(parts,
		lipgloss.NewStyle().Foreground(t.Subtext).Render(count),
		lipgloss.NewStyle().Foreground(t.Text).Render(pct))

	row := strings.Join(parts, " ")
	if selected {
		return lipgloss.NewStyle().Background(t.Surface0).Render(row)
	}
	return row
}

func (p *TaskListPanel) renderTaskRow(task tasks.Task, selected bool) string {
	t := p.theme
	cw := p.ContentWidth()

	icon := lipgloss.NewStyle().Foreground(StatusColor(t, task.Status)).Render(task.Status.Icon())

	agentCol := ""
	if p.showAgent && task.Agent != "" {
		agentCol = "@" + task.Agent
	}
	// marker, two-space indent, icon, space, text
	textWidth := cw - 1 - 2 - 3 - 1
	if agentCol != "" {
		textWidth -= lipgloss.Width(agentCol) + 1
	}
	if textWidth < 4 {
		textWidth = 4
		agentCol = ""
	}

	textStyle := lipgloss.NewStyle().Foreground(t.Text)
	if task.Status == tasks.StatusCompleted {
		textStyle = textStyle.Foreground(t.Subtext)
	}
	if selected {
		textStyle = textStyle.Bold(true)
	}

	text := task.ID + " " + task.Name
	row := p.marker(selected) + "  " + icon + " "
	if agentCol != "" {
		row += textStyle.Render(layout.PadRight(text, textWidth)) + " " +
			lipgloss.NewStyle().Foreground(t.Overlay).Render(agentCol)
	} else {
		row += textStyle.Render(layout.TruncateWidthDefault(text, textWidth))
	}

	if selected {
		return lipgloss.NewStyle().Background(t.Surface0).Render(row)
	}
	return row
}

// StatusColor returns the colour used for a task status icon
func StatusColor(t theme.Theme, s tasks.Status) lipgloss.Color {
	switch s {
	case tasks.StatusCompleted:
		return t.Success
	case tasks.StatusInProgress:
		return t.Info
	case tasks.StatusFailed:
		return t.Error
	case tasks.StatusBlocked:
		return t.Peach
	default:
		return t.Overlay
	}
}
