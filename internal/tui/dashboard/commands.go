package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives redraws and the non-blocking drain of change notifications.
type TickMsg time.Time

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
