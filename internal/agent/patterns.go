package agent

import "strings"

// rule is one row of the error classification table. Patterns are lowercase
// substrings; the first rule with any match wins.
type rule struct {
	patterns   []string
	category   Category
	retryable  bool
	suggestion string
}

// rules is evaluated top to bottom. Order matters: "permission denied: x not
// found" must land on Permission, not Type.
var rules = []rule{
	// Permission
	{[]string{"permission denied"}, CategoryPermission, false, "Check file permissions"},
	{[]string{"access denied"}, CategoryPermission, false, "Check access rights"},

	// Network
	{[]string{"connection refused"}, CategoryNetwork, true, "Check if service is running"},
	{[]string{"timeout", "timed out"}, CategoryNetwork, true, "Retry or increase timeout"},
	{[]string{"rate limit"}, CategoryNetwork, true, "Wait and retry"},
	{[]string{"dns", "resolve"}, CategoryNetwork, true, "Check network connection"},

	// Type
	{[]string{"type error", "type mismatch"}, CategoryType, false, "Fix type annotations"},
	{[]string{"cannot find", "not found"}, CategoryType, false, "Check imports and paths"},
	{[]string{"undefined", "unresolved"}, CategoryType, false, "Check variable/module names"},

	// Runtime
	{[]string{"out of memory", "oom"}, CategoryRuntime, false, "Reduce memory usage"},
	{[]string{"stack overflow"}, CategoryRuntime, false, "Check for infinite recursion"},
	{[]string{"panic", "unwrap"}, CategoryRuntime, false, "Add proper error handling"},
}

// unknownSuggestion is returned when no rule matches.
const unknownSuggestion = "Investigate error details"

// matchAny returns true if lowered contains any of the patterns.
// Callers lowercase the text once; patterns are already lowercase.
func matchAny(lowered string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}
