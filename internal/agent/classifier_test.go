package agent

import (
	"strings"
	"testing"
)

func TestClassify_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg        string
		category   Category
		retryable  bool
		suggestion string
	}{
		{"open /etc/shadow: permission denied", CategoryPermission, false, "Check file permissions"},
		{"Access Denied for user", CategoryPermission, false, "Check access rights"},
		{"connection refused: host:5432", CategoryNetwork, true, "Check if service is running"},
		{"request timeout after 30s", CategoryNetwork, true, "Retry or increase timeout"},
		{"operation timed out", CategoryNetwork, true, "Retry or increase timeout"},
		{"rate limit exceeded", CategoryNetwork, true, "Wait and retry"},
		{"DNS lookup failed", CategoryNetwork, true, "Check network connection"},
		{"could not resolve host", CategoryNetwork, true, "Check network connection"},
		{"Type error: expected string", CategoryType, false, "Fix type annotations"},
		{"type mismatch in argument", CategoryType, false, "Fix type annotations"},
		{"cannot find module 'x'", CategoryType, false, "Check imports and paths"},
		{"file not found", CategoryType, false, "Check imports and paths"},
		{"foo is undefined", CategoryType, false, "Check variable/module names"},
		{"symbol is UNDEFINED here", CategoryType, false, "Check variable/module names"},
		{"fatal: out of memory", CategoryRuntime, false, "Reduce memory usage"},
		{"process killed (OOM)", CategoryRuntime, false, "Reduce memory usage"},
		{"thread main has overflowed its stack: stack overflow", CategoryRuntime, false, "Check for infinite recursion"},
		{"panic: index out of range", CategoryRuntime, false, "Add proper error handling"},
		{"called unwrap on a None value", CategoryRuntime, false, "Add proper error handling"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := Classify(tt.msg)
			want := Analysis{Category: tt.category, Retryable: tt.retryable, Suggestion: tt.suggestion}
			if got != want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.msg, got, want)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"permission denied", "connection refused", "stack overflow", "something odd"} {
		lower := Classify(msg)
		upper := Classify(strings.ToUpper(msg))
		if lower != upper {
			t.Errorf("Classify(%q) = %+v, upper = %+v", msg, lower, upper)
		}
	}
}

func TestClassify_Priority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want Category
	}{
		{"permission denied: config not found", CategoryPermission},
		{"not found: permission denied", CategoryPermission},
		{"connection refused after timeout", CategoryNetwork},
		{"panic: type mismatch", CategoryType},
		{"dns resolution returned undefined", CategoryNetwork},
		{"unresolved import", CategoryNetwork},
	}
	for _, tt := range tests {
		if got := Classify(tt.msg).Category; got != tt.want {
			t.Errorf("Classify(%q).Category = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestClassify_Unknown(t *testing.T) {
	t.Parallel()

	want := Analysis{Category: CategoryUnknown, Retryable: false, Suggestion: "Investigate error details"}
	for _, msg := range []string{"", "   ", "something unexpected happened", "exit status 2"} {
		if got := Classify(msg); got != want {
			t.Errorf("Classify(%q) = %+v, want %+v", msg, got, want)
		}
	}
}

func TestRulesTableShape(t *testing.T) {
	t.Parallel()

	if len(rules) != 12 {
		t.Fatalf("len(rules) = %d, want 12", len(rules))
	}
	for i, r := range rules {
		if len(r.patterns) == 0 {
			t.Errorf("rule %d has no patterns", i+1)
		}
		for _, p := range r.patterns {
			if p != strings.ToLower(p) {
				t.Errorf("rule %d pattern %q is not lowercase", i+1, p)
			}
		}
	}
}
