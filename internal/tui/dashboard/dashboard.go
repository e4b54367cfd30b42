// Package dashboard provides the live task and agent dashboard
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/state"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
	"github.com/Dicklesworthstone/agentboard/internal/tui/dashboard/panels"
	"github.com/Dicklesworthstone/agentboard/internal/tui/layout"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
	"github.com/Dicklesworthstone/agentboard/internal/watcher"
)

// Default timings
const (
	DefaultTick         = 250 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
	DefaultSplit        = 55
)

// Focus identifies the pane receiving movement keys
type Focus int

const (
	FocusTasks Focus = iota
	FocusDetail
	FocusAgents
	focusCount
)

func (f Focus) String() string {
	switch f {
	case FocusTasks:
		return "tasks"
	case FocusDetail:
		return "detail"
	case FocusAgents:
		return "agents"
	default:
		return "unknown"
	}
}

// KeyMap defines dashboard keybindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

var dashKeys = KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Options configures the dashboard model
type Options struct {
	Dashboard *state.Dashboard

	// Changes delivers live reload notifications. Nil selects poll mode.
	Changes <-chan watcher.Change

	Theme        theme.Theme
	Split        int  // left pane width percentage
	NoAI         bool // hide error category and suggestion
	Tick         time.Duration
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Model is the dashboard model. It is the single owner of the Dashboard:
// every mutation happens inside Update.
type Model struct {
	dash    *state.Dashboard
	changes <-chan watcher.Change
	logger  *slog.Logger
	theme   theme.Theme

	split        int
	noAI         bool
	tick         time.Duration
	pollInterval time.Duration
	lastPoll     time.Time

	cursor   state.Cursor
	focus    Focus
	width    int
	height   int
	tier     layout.Tier
	quitting bool
	lastErr  error

	taskList *panels.TaskListPanel
	detail   *panels.DetailPanel
	agents   *panels.AgentsPanel
	errors   *panels.ErrorsPanel
}

// New creates a new dashboard model
func New(opts Options) Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Split <= 0 {
		opts.Split = DefaultSplit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Theme.Name == "" {
		opts.Theme = theme.Plain
	}

	m := Model{
		dash:         opts.Dashboard,
		changes:      opts.Changes,
		logger:       opts.Logger,
		theme:        opts.Theme,
		split:        opts.Split,
		noAI:         opts.NoAI,
		tick:         opts.Tick,
		pollInterval: opts.PollInterval,
		lastPoll:     time.Now(),
		width:        80,
		height:       24,
		tier:         layout.TierForWidth(80),
		taskList:     panels.NewTaskListPanel(opts.Theme),
		detail:       panels.NewDetailPanel(opts.Theme),
		agents:       panels.NewAgentsPanel(opts.Theme),
		errors:       panels.NewErrorsPanel(opts.Theme),
	}
	m.detail.SetShowAnalysis(!opts.NoAI)
	m.errors.SetShowAnalysis(!opts.NoAI)
	m.applyFocus()
	return m
}

// Live reports whether filesystem notifications drive reloads
func (m Model) Live() bool {
	return m.changes != nil
}

// Focus returns the focused pane
func (m Model) Focus() Focus {
	return m.focus
}

// Cursor returns the selected row of the task list
func (m Model) Cursor() int {
	return m.cursor.Index()
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tier = layout.TierForWidth(msg.Width)
		return m, nil

	case TickMsg:
		m.drain(time.Time(msg))
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dashKeys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, dashKeys.Tab):
			m.focus = (m.focus + 1) % focusCount
			m.applyFocus()

		case key.Matches(msg, dashKeys.ShiftTab):
			m.focus = (m.focus + focusCount - 1) % focusCount
			m.applyFocus()

		case key.Matches(msg, dashKeys.Down):
			m.moveDown()

		case key.Matches(msg, dashKeys.Up):
			m.moveUp()

		case key.Matches(msg, dashKeys.Top):
			m.moveTop()

		case key.Matches(msg, dashKeys.Bottom):
			m.moveBottom()

		case key.Matches(msg, dashKeys.Reload):
			m.reloadAll()
		}
	}

	return m, nil
}

func (m *Model) applyFocus() {
	m.taskList.Blur()
	m.detail.Blur()
	m.agents.Blur()
	switch m.focus {
	case FocusTasks:
		m.taskList.Focus()
	case FocusDetail:
		m.detail.Focus()
	case FocusAgents:
		m.agents.Focus()
	}
}

func (m *Model) moveDown() {
	switch m.focus {
	case FocusTasks:
		m.cursor.Next(m.dash.TotalItems())
	case FocusDetail:
		m.detail.ScrollDown()
	case FocusAgents:
		m.agents.SetAgents(m.dash.Agents())
		m.agents.Down()
	}
}

func (m *Model) moveUp() {
	switch m.focus {
	case FocusTasks:
		m.cursor.Prev()
	case FocusDetail:
		m.detail.ScrollUp()
	case FocusAgents:
		m.agents.Up()
	}
}

func (m *Model) moveTop() {
	switch m.focus {
	case FocusTasks:
		m.cursor.First()
	case FocusDetail:
		m.detail.ScrollTop()
	case FocusAgents:
		m.agents.Top()
	}
}

func (m *Model) moveBottom() {
	switch m.focus {
	case FocusTasks:
		m.cursor.Last(m.dash.TotalItems())
	case FocusAgents:
		m.agents.SetAgents(m.dash.Agents())
		m.agents.Bottom()
	}
}

// drain applies every pending change notification without blocking. In poll
// mode both sources are re-read once per poll interval instead.
func (m *Model) drain(now time.Time) {
	if m.changes == nil {
		if now.Sub(m.lastPoll) >= m.pollInterval {
			m.lastPoll = now
			m.apply(watcher.SourceTasks)
			m.apply(watcher.SourceHooks)
		}
		return
	}

	var pending [2]bool
	for done := false; !done; {
		select {
		case c, ok := <-m.changes:
			if !ok {
				m.logger.Warn("live reload stopped, polling instead", "interval", m.pollInterval)
				m.changes = nil
				m.lastPoll = now
				done = true
				break
			}
			if c.Source >= 0 && int(c.Source) < len(pending) {
				pending[c.Source] = true
			}
		default:
			done = true
		}
	}
	if pending[watcher.SourceTasks] {
		m.apply(watcher.SourceTasks)
	}
	if pending[watcher.SourceHooks] {
		m.apply(watcher.SourceHooks)
	}
}

// apply re-reads one source. Task reloads keep the selection on the same
// task when it still exists.
func (m *Model) apply(src watcher.Source) {
	anchor, anchored := m.dash.AnchorAt(m.cursor.Index())

	err := m.dash.ApplyChange(watcher.Change{Source: src})
	m.lastErr = err
	if err != nil {
		m.logger.Warn("reload failed", "source", src, "error", err)
	}

	if src == watcher.SourceTasks {
		if anchored {
			m.dash.Reanchor(&m.cursor, anchor)
		} else {
			m.cursor.Clamp(m.dash.TotalItems())
		}
	}
}

func (m *Model) reloadAll() {
	anchor, anchored := m.dash.AnchorAt(m.cursor.Index())
	err := m.dash.Reload()
	m.lastErr = err
	if err != nil {
		m.logger.Warn("manual reload failed", "error", err)
	} else {
		m.logger.Debug("manual reload")
	}
	if anchored {
		m.dash.Reanchor(&m.cursor, anchor)
	} else {
		m.cursor.Clamp(m.dash.TotalItems())
	}
}

// syncPanels pushes the current dashboard state into the panels.
func (m Model) syncPanels() {
	m.taskList.SetData(m.dash.Phases(), m.dash.Flatten(), m.cursor.Index(), m.dash.TasksError() != nil)
	m.taskList.SetShowAgent(m.tier >= layout.TierWide)
	m.detail.SetSelection(m.selection())
	m.agents.SetAgents(m.dash.Agents())
	m.errors.SetErrors(m.dash.ErrorRuns())
}

func (m Model) selection() panels.DetailSelection {
	it, ok := m.dash.ItemAt(m.cursor.Index())
	if !ok {
		return panels.DetailSelection{}
	}
	phases := m.dash.Phases()
	sel := panels.DetailSelection{Phase: &phases[it.PhaseIndex]}
	if it.Kind != state.ItemTask {
		return sel
	}
	task := phases[it.PhaseIndex].Tasks[it.TaskIndex]
	sel.Task = &task
	if task.Agent == "" {
		return sel
	}
	if st, ok := m.dash.Agent(task.Agent); ok {
		sel.Agent = &st
	}
	sel.Errors = m.dash.ErrorsFor(task.Agent)
	return sel
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.syncPanels()

	header := m.renderHeader()
	status := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	var body string
	if m.tier == layout.TierNarrow {
		body = m.renderStacked(bodyHeight)
	} else {
		body = m.renderSplit(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderHeader() string {
	t := m.theme
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("agentboard")
	path := lipgloss.NewStyle().Foreground(t.Subtext).Render(
		layout.TruncateWidthDefault(m.dash.TasksPath(), m.width-lipgloss.Width(title)-3))
	return layout.ClipLines(title+"  "+path, m.width)
}

// renderSplit shows the task list on the left and the detail, agents and
// errors panes stacked on the right.
func (m Model) renderSplit(height int) string {
	leftWidth, rightWidth := layout.SplitWidths(m.width, m.split)

	m.taskList.SetSize(leftWidth, height)

	detailHeight := height * 2 / 5
	agentsHeight := (height - detailHeight) / 2
	errorsHeight := height - detailHeight - agentsHeight
	m.detail.SetSize(rightWidth, detailHeight)
	m.agents.SetSize(rightWidth, agentsHeight)
	m.errors.SetSize(rightWidth, errorsHeight)

	right := lipgloss.JoinVertical(lipgloss.Left, m.detail.View(), m.agents.View(), m.errors.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, m.taskList.View(), right)
}

// renderStacked shows the task list above whichever side pane is focused.
func (m Model) renderStacked(height int) string {
	top := height / 2
	m.taskList.SetSize(m.width, top)

	var side panels.Panel = m.detail
	if m.focus == FocusAgents {
		side = m.agents
	}
	side.SetSize(m.width, height-top)
	return lipgloss.JoinVertical(lipgloss.Left, m.taskList.View(), side.View())
}

func (m Model) renderStatusBar() string {
	t := m.theme
	total, completed, failed := m.dash.Counts()
	pct := int(m.dash.OverallProgress()*100 + 0.5)

	var parts []string
	parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(t.Text).
		Render(fmt.Sprintf("%d/%d tasks (%d%%)", completed, total, pct)))

	if n := m.dash.AgentCount(agent.StatusRunning); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Success).Render(fmt.Sprintf("%s %d active", agent.StatusRunning.Icon(), n)))
	}
	if n := m.dash.AgentCount(agent.StatusError); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Error).Render(fmt.Sprintf("%s %d errored", agent.StatusError.Icon(), n)))
	}
	if failed > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Error).Render(fmt.Sprintf("%s %d failed", tasks.StatusFailed.Icon(), failed)))
	}
	if n, _ := m.dash.DecodeErrors(); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Warning).Render(fmt.Sprintf("⚠ %d bad lines", n)))
	}

	badge := lipgloss.NewStyle().Foreground(t.Base).Background(t.Success).Bold(true).Padding(0, 1)
	label := "live"
	if m.changes == nil {
		badge = badge.Background(t.Warning)
		label = "poll"
	}
	parts = append(parts, badge.Render(label))

	keyStyle := lipgloss.NewStyle().Foreground(t.Subtext).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.Overlay)
	for _, b := range []key.Binding{dashKeys.Down, dashKeys.Tab, dashKeys.Reload, dashKeys.Quit} {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}

	return layout.ClipLines(strings.Join(parts, "  "), m.width)
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
// Cancellation is a normal exit.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
