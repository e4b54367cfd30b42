// Package agent classifies agent error messages and folds hook events into
// per-agent lifecycle state.
package agent

import "strings"

// Category is the coarse class of an error message.
type Category string

const (
	CategoryType       Category = "Type"
	CategoryRuntime    Category = "Runtime"
	CategoryNetwork    Category = "Network"
	CategoryPermission Category = "Permission"
	CategoryUnknown    Category = "Unknown"
)

// String returns the display name of the category.
func (c Category) String() string {
	return string(c)
}

// Analysis is the classifier verdict for one message.
type Analysis struct {
	Category   Category `json:"category" yaml:"category"`
	Retryable  bool     `json:"retryable" yaml:"retryable"`
	Suggestion string   `json:"suggestion" yaml:"suggestion"`
}

// Classify maps a free-text error message to a category, retryable hint and
// suggestion. Matching is case-insensitive. Safe for concurrent use.
func Classify(message string) Analysis {
	lowered := strings.ToLower(message)
	for _, r := range rules {
		if matchAny(lowered, r.patterns) {
			return Analysis{Category: r.category, Retryable: r.retryable, Suggestion: r.suggestion}
		}
	}
	return Analysis{Category: CategoryUnknown, Suggestion: unknownSuggestion}
}
