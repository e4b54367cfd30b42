// Package theme provides the dashboard colour palettes.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the colours used by the dashboard
type Theme struct {
	Name string

	Base     lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color
	Overlay  lipgloss.Color
	Text     lipgloss.Color
	Subtext  lipgloss.Color

	Red    lipgloss.Color
	Green  lipgloss.Color
	Yellow lipgloss.Color
	Blue   lipgloss.Color
	Pink   lipgloss.Color
	Peach  lipgloss.Color
	Mauve  lipgloss.Color

	// Semantic aliases
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
}

// CatppuccinMocha is the dark default
var CatppuccinMocha = Theme{
	Name:     "mocha",
	Base:     "#1e1e2e",
	Surface0: "#313244",
	Surface1: "#45475a",
	Overlay:  "#6c7086",
	Text:     "#cdd6f4",
	Subtext:  "#a6adc8",
	Red:      "#f38ba8",
	Green:    "#a6e3a1",
	Yellow:   "#f9e2af",
	Blue:     "#89b4fa",
	Pink:     "#f5c2e7",
	Peach:    "#fab387",
	Mauve:    "#cba6f7",
	Primary:  "#89b4fa",
	Success:  "#a6e3a1",
	Warning:  "#f9e2af",
	Error:    "#f38ba8",
	Info:     "#89dceb",
}

// CatppuccinLatte is the light variant
var CatppuccinLatte = Theme{
	Name:     "latte",
	Base:     "#eff1f5",
	Surface0: "#ccd0da",
	Surface1: "#bcc0cc",
	Overlay:  "#9ca0b0",
	Text:     "#4c4f69",
	Subtext:  "#6c6f85",
	Red:      "#d20f39",
	Green:    "#40a02b",
	Yellow:   "#df8e1d",
	Blue:     "#1e66f5",
	Pink:     "#ea76cb",
	Peach:    "#fe640b",
	Mauve:    "#8839ef",
	Primary:  "#1e66f5",
	Success:  "#40a02b",
	Warning:  "#df8e1d",
	Error:    "#d20f39",
	Info:     "#04a5e5",
}

// Nord is the arctic palette
var Nord = Theme{
	Name:     "nord",
	Base:     "#2e3440",
	Surface0: "#3b4252",
	Surface1: "#434c5e",
	Overlay:  "#4c566a",
	Text:     "#eceff4",
	Subtext:  "#d8dee9",
	Red:      "#bf616a",
	Green:    "#a3be8c",
	Yellow:   "#ebcb8b",
	Blue:     "#81a1c1",
	Pink:     "#b48ead",
	Peach:    "#d08770",
	Mauve:    "#b48ead",
	Primary:  "#88c0d0",
	Success:  "#a3be8c",
	Warning:  "#ebcb8b",
	Error:    "#bf616a",
	Info:     "#88c0d0",
}

// Plain has no colours. Empty lipgloss colours render as the terminal default.
var Plain = Theme{Name: "plain"}

// NoColorEnabled reports whether colour output is disabled via
// AGENTBOARD_NO_COLOR or the NO_COLOR convention.
func NoColorEnabled() bool {
	if v := os.Getenv("AGENTBOARD_NO_COLOR"); v != "" && v != "0" && !strings.EqualFold(v, "false") {
		return true
	}
	return termenv.EnvNoColor()
}

// Resolve returns the theme for name. "auto" (or empty) picks Mocha or Latte
// from the terminal background; an unknown name falls back to Mocha.
func Resolve(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mocha":
		return CatppuccinMocha
	case "latte":
		return CatppuccinLatte
	case "nord":
		return Nord
	case "plain":
		return Plain
	case "", "auto":
		if !termenv.HasDarkBackground() {
			return CatppuccinLatte
		}
		return CatppuccinMocha
	default:
		return CatppuccinMocha
	}
}

// Apply configures lipgloss's colour profile for t. The plain theme and
// disabled colour force ASCII output.
func Apply(t Theme) {
	if t.Name == Plain.Name {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
	lipgloss.SetHasDarkBackground(t.Name != CatppuccinLatte.Name)
}

// IsPlain reports whether t renders without colour
func (t Theme) IsPlain() bool {
	return t.Name == Plain.Name
}
