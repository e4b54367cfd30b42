package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
	"github.com/Dicklesworthstone/agentboard/internal/tui/layout"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
)

func detailConfig() PanelConfig {
	return PanelConfig{
		ID:        "detail",
		Title:     "Detail",
		MinWidth:  30,
		MinHeight: 6,
	}
}

// DetailSelection is what the detail panel describes: a phase header or a
// task with its assigned agent and that agent's errors.
type DetailSelection struct {
	Phase  *tasks.Phase
	Task   *tasks.Task
	Agent  *agent.State
	Errors []agent.ErrorRecord
}

// DetailPanel describes the selected row
type DetailPanel struct {
	PanelBase
	sel          DetailSelection
	showAnalysis bool
	offset       int
}

// NewDetailPanel creates a new detail panel
func NewDetailPanel(t theme.Theme) *DetailPanel {
	return &DetailPanel{PanelBase: NewPanelBase(detailConfig(), t), showAnalysis: true}
}

// SetSelection replaces the described row and resets scrolling when the
// selection changed.
func (p *DetailPanel) SetSelection(sel DetailSelection) {
	if !sameSelection(p.sel, sel) {
		p.offset = 0
	}
	p.sel = sel
}

func sameSelection(a, b DetailSelection) bool {
	switch {
	case a.Task != nil && b.Task != nil:
		return a.Task.ID == b.Task.ID
	case a.Phase != nil && b.Phase != nil && a.Task == nil && b.Task == nil:
		return a.Phase.ID == b.Phase.ID
	default:
		return false
	}
}

// SetShowAnalysis toggles error category and suggestion lines
func (p *DetailPanel) SetShowAnalysis(show bool) {
	p.showAnalysis = show
}

// ScrollDown moves the view one line down
func (p *DetailPanel) ScrollDown() {
	p.offset++
}

// ScrollUp moves the view one line up
func (p *DetailPanel) ScrollUp() {
	if p.offset > 0 {
		p.offset--
	}
}

// ScrollTop resets the view to the first line
func (p *DetailPanel) ScrollTop() {
	p.offset = 0
}

// View renders the panel
func (p *DetailPanel) View() string {
	var lines []string
	switch {
	case p.sel.Task != nil:
		lines = p.taskLines()
	case p.sel.Phase != nil:
		lines = p.phaseLines()
	default:
		return p.Frame(p.Config().Title, p.Empty("Nothing selected"))
	}

	h := p.ContentHeight()
	if max := len(lines) - h; p.offset > max {
		p.offset = max
	}
	if p.offset < 0 {
		p.offset = 0
	}
	return p.Frame(p.Config().Title, strings.Join(lines[p.offset:], "\n"))
}

func (p *DetailPanel) label(name string) string {
	return lipgloss.NewStyle().Foreground(p.theme.Subtext).Render(fmt.Sprintf("%-8s", name))
}

func (p *DetailPanel) phaseLines() []string {
	t := p.theme
	ph := p.sel.Phase
	cw := p.ContentWidth()

	counts := make(map[tasks.Status]int)
	for _, task := range ph.Tasks {
		counts[task.Status]++
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(t.Blue).Render(layout.TruncateWidthDefault(ph.ID+" "+ph.Name, cw)),
		"",
		p.label("Progress") + fmt.Sprintf(" %d/%d (%d%%)", ph.Completed(), len(ph.Tasks), int(ph.Progress()*100+0.5)),
	}
	for _, s := range []tasks.Status{tasks.StatusInProgress, tasks.StatusPending, tasks.StatusBlocked, tasks.StatusFailed} {
		if counts[s] == 0 {
			continue
		}
		icon := lipgloss.NewStyle().Foreground(StatusColor(t, s)).Render(s.Icon())
		lines = append(lines, p.label("")+fmt.Sprintf(" %s %d %s", icon, counts[s], s))
	}
	return lines
}

func (p *DetailPanel) taskLines() []string {
	t := p.theme
	task := p.sel.Task
	cw := p.ContentWidth()

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(t.Text).Render(layout.TruncateWidthDefault(task.ID, cw)),
	}
	for _, l := range layout.Wrap(task.Name, cw) {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Text).Render(l))
	}
	lines = append(lines, "")

	if p.sel.Phase != nil {
		lines = append(lines, p.label("Phase")+" "+p.sel.Phase.ID+" "+p.sel.Phase.Name)
	}
	icon := lipgloss.NewStyle().Foreground(StatusColor(t, task.Status)).Render(task.Status.Icon())
	lines = append(lines, p.label("Status")+" "+icon+" "+task.Status.String())

	if task.Agent == "" {
		lines = append(lines, p.label("Agent")+" "+p.Empty("unassigned"))
		return lines
	}
	lines = append(lines, p.label("Agent")+" "+task.Agent)

	if st := p.sel.Agent; st != nil {
		state := lipgloss.NewStyle().Foreground(AgentColor(t, st.Status)).Render(st.Status.Icon() + " " + st.Status.String())
		info := state
		if st.CurrentTask != "" {
			info += "  on " + st.CurrentTask
		}
		if st.CurrentTool != "" {
			info += "  using " + st.CurrentTool
		}
		lines = append(lines, p.label("")+" "+info)
	} else {
		lines = append(lines, p.label("")+" "+p.Empty("no events yet"))
	}

	if len(p.sel.Errors) == 0 {
		return lines
	}
	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Foreground(t.Error).Render(fmt.Sprintf("Errors (%d)", len(p.sel.Errors))))
	for i := len(p.sel.Errors) - 1; i >= 0; i-- {
		lines = append(lines, errorLines(t, p.sel.Errors[i], 1, cw, p.showAnalysis, false)...)
	}
	return lines
}

// AgentColor returns the colour for an agent status
func AgentColor(t theme.Theme, s agent.Status) lipgloss.Color {
	switch s {
	case agent.StatusRunning:
		return t.Success
	case agent.StatusError:
		return t.Error
	default:
		return t.Overlay
	}
}

// errorLines renders one error record: a timestamped message, optionally
// followed by the classifier verdict and suggestion.
func errorLines(t theme.Theme, rec agent.ErrorRecord, count, width int, showAnalysis, showAgent bool) []string {
	head := rec.Timestamp.Local().Format("15:04:05")
	if showAgent {
		head += " " + rec.AgentID
	}
	if count > 1 {
		head += fmt.Sprintf(" ×%d", count)
	}
	lines := []string{lipgloss.NewStyle().Foreground(t.Overlay).Render(layout.TruncateWidthDefault(head, width))}

	msg := rec.Message
	if msg == "" {
		msg = "(no message)"
	}
	for _, l := range layout.Wrap(msg, width-2) {
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(t.Text).Render(l))
	}

	if !showAnalysis {
		return lines
	}
	verdict := rec.Category.String()
	if rec.Retryable {
		verdict += " · retryable"
	}
	lines = append(lines, "  "+lipgloss.NewStyle().Foreground(t.Warning).Render(layout.TruncateWidthDefault(verdict, width-2)))
	for _, l := range layout.Wrap("→ "+rec.Suggestion, width-2) {
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(t.Subtext).Italic(true).Render(l))
	}
	return lines
}
