package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTierForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  Tier
	}{
		{0, TierNarrow},
		{99, TierNarrow},
		{100, TierSplit},
		{159, TierSplit},
		{160, TierWide},
		{400, TierWide},
	}

	for _, tt := range tests {
		if got := TierForWidth(tt.width); got != tt.want {
			t.Errorf("TierForWidth(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTierString(t *testing.T) {
	if TierSplit.String() != "split" || Tier(9).String() != "unknown" {
		t.Errorf("String() = %q, %q", TierSplit.String(), Tier(9).String())
	}
}

func TestSplitWidths(t *testing.T) {
	// Below threshold: should return total,0
	l, r := SplitWidths(99, 55)
	if l != 99 || r != 0 {
		t.Fatalf("SplitWidths(99) = %d,%d want 99,0", l, r)
	}

	tests := []struct {
		total, percent int
		wantLeft       int
	}{
		{104, 50, 50},
		{104, 55, 55},
		{204, 55, 110},
		{104, 5, 20},  // clamped to 20
		{104, 95, 80}, // clamped to 80
	}
	for _, tt := range tests {
		l, r := SplitWidths(tt.total, tt.percent)
		if l != tt.wantLeft {
			t.Errorf("SplitWidths(%d, %d) left = %d, want %d", tt.total, tt.percent, l, tt.wantLeft)
		}
		if l+r != tt.total-borderBudget {
			t.Errorf("SplitWidths(%d, %d) sum = %d, want %d", tt.total, tt.percent, l+r, tt.total-borderBudget)
		}
	}
}

func TestContentWidth(t *testing.T) {
	if got := ContentWidth(40); got != 36 {
		t.Errorf("ContentWidth(40) = %d", got)
	}
	if got := ContentWidth(2); got != 0 {
		t.Errorf("ContentWidth(2) = %d, want 0", got)
	}
}

// TestTruncateRunes tests the rune-aware string truncation function.
func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		max    int
		suffix string
		want   string
	}{
		{"empty string", "", 10, "...", ""},
		{"short string no truncate", "hello", 10, "...", "hello"},
		{"exact length", "hello", 5, "...", "hello"},
		{"truncate with suffix", "hello world", 8, "...", "hello..."},
		{"truncate no suffix", "hello world", 8, "", "hello wo"},
		{"max zero", "hello", 0, "...", ""},
		{"max negative", "hello", -1, "...", ""},
		{"suffix longer than max", "hello", 2, "...", "he"},
		{"unicode string", "héllo wörld", 8, "...", "héllo..."},
		{"single char max", "hello", 1, "", "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.s, tt.max, tt.suffix)
			if got != tt.want {
				t.Errorf("TruncateRunes(%q, %d, %q) = %q, want %q",
					tt.s, tt.max, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		s        string
		maxWidth int
		suffix   string
	}{
		{"fits unchanged", "hello", 10, "..."},
		{"empty string", "", 10, "..."},
		{"zero maxWidth", "hello", 0, "..."},
		{"negative maxWidth", "hello", -1, "..."},
		{"exact fit", "hi", 2, "..."},
		{"wide runes", "エージェント状態", 7, "…"},
		{"suffix too wide", "hello world", 2, "..."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateWidth(tt.s, tt.maxWidth, tt.suffix)
			if tt.maxWidth <= 0 {
				if got != "" {
					t.Errorf("TruncateWidth(%q, %d, %q) = %q, want empty", tt.s, tt.maxWidth, tt.suffix, got)
				}
				return
			}
			// Result should fit in maxWidth
			w := lipgloss.Width(got)
			if w > tt.maxWidth {
				t.Errorf("TruncateWidth(%q, %d, %q) = %q (width=%d), exceeds max", tt.s, tt.maxWidth, tt.suffix, got, w)
			}
		})
	}
}

func TestTruncateWidthDefault(t *testing.T) {
	t.Parallel()

	got := TruncateWidthDefault("hello world this is long", 10)
	if w := lipgloss.Width(got); w > 10 {
		t.Errorf("result %q has width %d, want <= 10", got, w)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("result %q missing ellipsis", got)
	}

	// Short string passes through
	got = TruncateWidthDefault("hi", 10)
	if got != "hi" {
		t.Errorf("short string should pass through, got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight(ab, 5) = %q", got)
	}
	if got := PadRight("abcdefgh", 5); lipgloss.Width(got) != 5 {
		t.Errorf("PadRight(abcdefgh, 5) = %q, want width 5", got)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	lines := Wrap("connection refused while dialing the database server", 16)
	if len(lines) < 3 {
		t.Fatalf("Wrap produced %d lines: %q", len(lines), lines)
	}
	for _, l := range lines {
		if lipgloss.Width(l) > 16 {
			t.Errorf("line %q exceeds 16 cells", l)
		}
	}

	long := Wrap(strings.Repeat("x", 40), 16)
	for _, l := range long {
		if lipgloss.Width(l) > 16 {
			t.Errorf("hard-wrapped line %q exceeds 16 cells", l)
		}
	}

	if Wrap("anything", 0) != nil {
		t.Error("Wrap with zero width should return nil")
	}
}

func TestClipLines(t *testing.T) {
	t.Parallel()

	styled := lipgloss.NewStyle().Bold(true).Render("abcdefghij") + "\nshort"
	got := ClipLines(styled, 4)
	for _, l := range strings.Split(got, "\n") {
		if lipgloss.Width(l) > 4 {
			t.Errorf("clipped line %q has width %d", l, lipgloss.Width(l))
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio       float64
		width       int
		full, blank int
	}{
		{0, 10, 0, 10},
		{0.5, 10, 5, 5},
		{1, 10, 10, 0},
		{1.7, 4, 4, 0},
		{-1, 4, 0, 4},
	}
	for _, tt := range tests {
		f, e := ProgressBar(tt.ratio, tt.width)
		if strings.Count(f, "█") != tt.full || strings.Count(e, "░") != tt.blank {
			t.Errorf("ProgressBar(%v, %d) = %q/%q", tt.ratio, tt.width, f, e)
		}
	}
}
