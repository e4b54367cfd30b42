package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/tui/layout"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
)

func agentsConfig() PanelConfig {
	return PanelConfig{
		ID:        "agents",
		Title:     "Agents",
		MinWidth:  30,
		MinHeight: 4,
	}
}

// AgentsPanel lists every agent seen in the hook logs, sorted by id
type AgentsPanel struct {
	PanelBase
	agents []agent.State
	cursor int
	offset int
}

// NewAgentsPanel creates a new agents panel
func NewAgentsPanel(t theme.Theme) *AgentsPanel {
	return &AgentsPanel{PanelBase: NewPanelBase(agentsConfig(), t)}
}

// SetAgents updates the agent rows
func (p *AgentsPanel) SetAgents(agents []agent.State) {
	p.agents = agents
	if p.cursor >= len(p.agents) {
		p.cursor = len(p.agents) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Down moves the highlight to the next agent
func (p *AgentsPanel) Down() {
	if p.cursor < len(p.agents)-1 {
		p.cursor++
	}
}

// Up moves the highlight to the previous agent
func (p *AgentsPanel) Up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Top moves the highlight to the first agent
func (p *AgentsPanel) Top() {
	p.cursor = 0
}

// Bottom moves the highlight to the last agent
func (p *AgentsPanel) Bottom() {
	if len(p.agents) > 0 {
		p.cursor = len(p.agents) - 1
	}
}

// Selected returns the highlighted agent
func (p *AgentsPanel) Selected() (agent.State, bool) {
	if p.cursor < 0 || p.cursor >= len(p.agents) {
		return agent.State{}, false
	}
	return p.agents[p.cursor], true
}

// View renders the panel
func (p *AgentsPanel) View() string {
	t := p.theme
	title := fmt.Sprintf("%s (%d)", p.Config().Title, len(p.agents))
	if len(p.agents) == 0 {
		return p.Frame(title, p.Empty("No agent events yet"))
	}

	cw := p.ContentWidth()
	h := p.ContentHeight()
	p.offset = scrollOffset(p.offset, p.cursor, h, len(p.agents))
	end := p.offset + h
	if end > len(p.agents) {
		end = len(p.agents)
	}

	var lines []string
	for i := p.offset; i < end; i++ {
		st := p.agents[i]
		selected := p.IsFocused() && i == p.cursor

		icon := lipgloss.NewStyle().Foreground(AgentColor(t, st.Status)).Bold(true).Render(st.Status.Icon())

		errs := ""
		if st.ErrorCount > 0 {
			errs = lipgloss.NewStyle().Foreground(t.Error).Render(fmt.Sprintf("✗%d", st.ErrorCount))
		}

		activity := st.CurrentTask
		if st.CurrentTool != "" {
			activity += " " + st.CurrentTool
		}

		// icon, space, id, space, activity, space, errors
		idWidth := cw / 2
		if idWidth > 28 {
			idWidth = 28
		}
		actWidth := cw - 3 - idWidth - 1 - lipgloss.Width(errs)
		if errs != "" {
			actWidth--
		}

		row := icon + " " + lipgloss.NewStyle().Foreground(t.Text).Render(layout.PadRight(st.AgentID, idWidth))
		if actWidth > 0 {
			row += " " + lipgloss.NewStyle().Foreground(t.Subtext).Render(layout.PadRight(activity, actWidth))
		}
		if errs != "" {
			row += " " + errs
		}
		if selected {
			row = lipgloss.NewStyle().Background(t.Surface0).Render(row)
		}
		lines = append(lines, row)
	}
	return p.Frame(title, strings.Join(lines, "\n"))
}
