package panels

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/tracker"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
)

func errorsConfig() PanelConfig {
	return PanelConfig{
		ID:        "errors",
		Title:     "Recent Errors",
		MinWidth:  30,
		MinHeight: 4,
	}
}

// ErrorsPanel shows the recent error history, newest first, with repeated
// consecutive errors collapsed into one entry.
type ErrorsPanel struct {
	PanelBase
	runs         []tracker.Coalesced[agent.ErrorRecord]
	showAnalysis bool
}

// NewErrorsPanel creates a new errors panel
func NewErrorsPanel(t theme.Theme) *ErrorsPanel {
	return &ErrorsPanel{PanelBase: NewPanelBase(errorsConfig(), t), showAnalysis: true}
}

// SetErrors updates the error runs, oldest first as returned by the history
func (p *ErrorsPanel) SetErrors(runs []tracker.Coalesced[agent.ErrorRecord]) {
	p.runs = runs
}

// SetShowAnalysis toggles error category and suggestion lines
func (p *ErrorsPanel) SetShowAnalysis(show bool) {
	p.showAnalysis = show
}

// View renders the panel
func (p *ErrorsPanel) View() string {
	total := 0
	for _, r := range p.runs {
		total += r.Count
	}
	title := fmt.Sprintf("%s (%d)", p.Config().Title, total)
	if len(p.runs) == 0 {
		return p.Frame(title, p.Empty("No errors"))
	}

	cw := p.ContentWidth()
	var lines []string
	for i := len(p.runs) - 1; i >= 0 && len(lines) < p.ContentHeight(); i-- {
		r := p.runs[i]
		lines = append(lines, errorLines(p.theme, r.Last, r.Count, cw, p.showAnalysis, true)...)
	}
	return p.Frame(title, strings.Join(lines, "\n"))
}
