// Package layout provides width tiers and width-aware text helpers for the
// dashboard renderer.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Tier is a coarse width class used to pick a layout
type Tier int

const (
	// TierNarrow stacks the panes vertically
	TierNarrow Tier = iota
	// TierSplit shows the task list and the side panels next to each other
	TierSplit
	// TierWide additionally shows task names untruncated and the error column
	TierWide
)

// Width thresholds for each tier
const (
	SplitViewThreshold = 100
	WideViewThreshold  = 160
)

// borderBudget is the columns lost to the rounded border and padding of
// each side-by-side pane.
const borderBudget = 4

// TierForWidth maps a terminal width to a tier
func TierForWidth(width int) Tier {
	switch {
	case width >= WideViewThreshold:
		return TierWide
	case width >= SplitViewThreshold:
		return TierSplit
	default:
		return TierNarrow
	}
}

func (t Tier) String() string {
	switch t {
	case TierNarrow:
		return "narrow"
	case TierSplit:
		return "split"
	case TierWide:
		return "wide"
	default:
		return "unknown"
	}
}

// SplitWidths divides total between the left and right panes with the left
// taking leftPercent (clamped to 20..80). Narrow terminals return total,0.
// Both results include each pane's border budget.
func SplitWidths(total, leftPercent int) (left, right int) {
	if total < SplitViewThreshold {
		return total, 0
	}
	if leftPercent < 20 {
		leftPercent = 20
	}
	if leftPercent > 80 {
		leftPercent = 80
	}
	avail := total - borderBudget
	left = avail * leftPercent / 100
	right = avail - left
	return left, right
}

// ContentWidth returns the usable text width inside a bordered pane
func ContentWidth(paneWidth int) int {
	if w := paneWidth - borderBudget; w > 0 {
		return w
	}
	return 0
}

// TruncateRunes truncates s to at most max runes, appending suffix when it
// fits. When the suffix does not fit, s is cut without it.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	sfx := []rune(suffix)
	if len(sfx) >= max {
		return string(runes[:max])
	}
	return string(runes[:max-len(sfx)]) + suffix
}

// TruncateWidth truncates s to at most maxWidth terminal cells. Wide runes
// count as two cells. Falls back to a hard cut when suffix is too wide.
func TruncateWidth(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if runewidth.StringWidth(suffix) >= maxWidth {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, suffix)
}

// TruncateWidthDefault truncates with a single-cell ellipsis
func TruncateWidthDefault(s string, maxWidth int) string {
	return TruncateWidth(s, maxWidth, "…")
}

// PadRight truncates or pads s to exactly width cells
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateWidthDefault(s, width), width)
}

// Wrap word-wraps s to width cells and hard-wraps words longer than width.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	wrapped := wrap.String(wordwrap.String(s, width), width)
	return strings.Split(wrapped, "\n")
}

// ClipLines cuts every line of already-styled content to width cells.
// ANSI escape sequences are preserved.
func ClipLines(content string, width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = truncate.String(line, uint(width))
	}
	return strings.Join(lines, "\n")
}

// ProgressBar renders a filled/empty bar of width cells for ratio in 0..1
func ProgressBar(ratio float64, width int) (filled, empty string) {
	if width <= 0 {
		return "", ""
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	n := int(ratio*float64(width) + 0.5)
	return strings.Repeat("█", n), strings.Repeat("░", width-n)
}
