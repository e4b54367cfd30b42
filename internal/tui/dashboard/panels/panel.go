// Package panels renders the dashboard's bordered panes.
package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/agentboard/internal/tui/layout"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
)

// PanelConfig holds configuration for panel display.
type PanelConfig struct {
	// ID is a unique identifier for the panel (e.g., "tasks", "agents")
	ID string

	// Title is the display title for the panel header
	Title string

	// MinWidth is the minimum width the panel needs to render properly
	MinWidth int

	// MinHeight is the minimum height the panel needs to render properly
	MinHeight int
}

// Panel is a render-only dashboard pane. Data is pushed in by the model
// through panel-specific setters before View is called.
type Panel interface {
	View() string

	// SetSize sets the panel dimensions for rendering
	SetSize(width, height int)

	// Focus marks the panel as focused (receives keyboard input)
	Focus()

	// Blur marks the panel as unfocused
	Blur()

	// Config returns the panel's configuration
	Config() PanelConfig
}

// PanelBase provides common functionality for panel implementations.
// Embed this in concrete panel types to get default implementations.
type PanelBase struct {
	config  PanelConfig
	theme   theme.Theme
	width   int
	height  int
	focused bool
}

// NewPanelBase creates a new PanelBase with the given config.
func NewPanelBase(cfg PanelConfig, t theme.Theme) PanelBase {
	return PanelBase{config: cfg, theme: t}
}

// SetSize implements Panel.SetSize
func (b *PanelBase) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Focus implements Panel.Focus
func (b *PanelBase) Focus() {
	b.focused = true
}

// Blur implements Panel.Blur
func (b *PanelBase) Blur() {
	b.focused = false
}

// Config implements Panel.Config
func (b *PanelBase) Config() PanelConfig {
	return b.config
}

// IsFocused returns whether the panel is focused
func (b *PanelBase) IsFocused() bool {
	return b.focused
}

// Width returns the current panel width
func (b *PanelBase) Width() int {
	return b.width
}

// Height returns the current panel height
func (b *PanelBase) Height() int {
	return b.height
}

// Theme returns the panel's colours
func (b *PanelBase) Theme() theme.Theme {
	return b.theme
}

// ContentWidth is the text width inside the border and padding
func (b *PanelBase) ContentWidth() int {
	return layout.ContentWidth(b.width)
}

// ContentHeight is the number of body lines below the title
func (b *PanelBase) ContentHeight() int {
	if h := b.height - 3; h > 0 {
		return h
	}
	return 0
}

// Frame wraps body in the rounded border with the title line. The border is
// highlighted when the panel is focused.
func (b *PanelBase) Frame(title, body string) string {
	t := b.theme
	if b.width <= 2 || b.height <= 2 {
		return ""
	}

	borderColor := t.Surface1
	if b.focused {
		borderColor = t.Primary
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(b.width - 2).
		Height(b.height - 2).
		MaxHeight(b.height).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Mauve)
	if b.focused {
		titleStyle = titleStyle.Foreground(t.Primary)
	}

	cw := b.ContentWidth()
	content := titleStyle.Render(layout.TruncateWidthDefault(title, cw)) + "\n" +
		FitToHeight(body, b.ContentHeight())
	return boxStyle.Render(layout.ClipLines(content, cw))
}

// Empty renders the dimmed placeholder shown when a panel has no data
func (b *PanelBase) Empty(msg string) string {
	return lipgloss.NewStyle().Foreground(b.theme.Overlay).Italic(true).Render(msg)
}

// scrollOffset returns the first visible line so that cursor stays within a
// window of height lines.
func scrollOffset(offset, cursor, height, total int) int {
	if height <= 0 {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	if max := total - height; offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// PadToHeight pads content with empty lines to fill the specified height.
// This prevents layout jitter when content varies in length.
func PadToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < targetHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// TruncateToHeight truncates content to fit within targetHeight lines.
func TruncateToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= targetHeight {
		return content
	}
	return strings.Join(lines[:targetHeight], "\n")
}

// FitToHeight ensures content exactly fills targetHeight lines,
// truncating if too long or padding if too short.
func FitToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	return PadToHeight(TruncateToHeight(content, targetHeight), targetHeight)
}
