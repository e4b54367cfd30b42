package tasks

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// phaseHeadingPattern matches "## Phase 1: Backend", "# Phase 0 - Setup", "### Phase 2".
	phaseHeadingPattern = regexp.MustCompile(`^#{1,6}\s+Phase\s+([0-9A-Za-z._]+)\s*[:\-–]?\s*(.*?)\s*$`)

	// taskLinePattern matches "- [x] P1-T1: Name @agent" with one of the five status tokens.
	taskLinePattern = regexp.MustCompile(`^\s*[-*]\s+\[( |x|InProgress|Failed|Blocked)\]\s+(.+)$`)

	// taskIDPattern splits "P1-R1-T1: Name" into id and name.
	taskIDPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*):\s*(.*)$`)

	// agentMarkerPattern matches a trailing "@agent-name" assignment.
	agentMarkerPattern = regexp.MustCompile(`(?:^|\s)@([A-Za-z0-9][A-Za-z0-9._-]*)$`)
)

// Parse parses the raw text of a task document. Unrecognized lines are
// ignored; a document without any phase heading is a *DocumentFormatError.
func Parse(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	doc := &Document{}
	seen := map[string]bool{}
	phaseIDs := map[string]bool{}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		if line == "" {
			continue
		}

		if m := phaseHeadingPattern.FindStringSubmatch(line); m != nil {
			name := m[2]
			if name == "" {
				name = "Phase " + m[1]
			}
			// A repeated heading number gets a "~n" suffix so phase ids stay unique.
			id := "P" + m[1]
			for n := 2; phaseIDs[id]; n++ {
				id = fmt.Sprintf("P%s~%d", m[1], n)
			}
			phaseIDs[id] = true
			doc.Phases = append(doc.Phases, Phase{ID: id, Name: name})
			seen = map[string]bool{}
			continue
		}

		m := taskLinePattern.FindStringSubmatch(line)
		if m == nil || len(doc.Phases) == 0 {
			continue
		}
		phase := &doc.Phases[len(doc.Phases)-1]
		task := parseTaskBody(m[2], phase.ID, len(phase.Tasks)+1)
		task.Status = statusTokens[m[1]]

		// First occurrence wins so ids stay unique within a phase.
		if seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		phase.Tasks = append(phase.Tasks, task)
	}

	if len(doc.Phases) == 0 {
		return nil, &DocumentFormatError{Lines: len(lines), Reason: "no phase heading found"}
	}

	doc.recount()
	return doc, nil
}

// ParseFile reads and parses the task document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task document: %w", err)
	}
	return Parse(string(data))
}

// parseTaskBody extracts id, name and agent from the text after the status token.
func parseTaskBody(body, phaseID string, position int) Task {
	body = strings.TrimSpace(body)
	var task Task

	if m := agentMarkerPattern.FindStringSubmatch(body); m != nil {
		task.Agent = m[1]
		body = strings.TrimSpace(body[:len(body)-len(m[0])])
	}

	if m := taskIDPattern.FindStringSubmatch(body); m != nil {
		task.ID = m[1]
		task.Name = strings.TrimSpace(m[2])
	} else {
		task.ID = fmt.Sprintf("%s-T%d", phaseID, position)
		task.Name = body
	}
	if task.Name == "" {
		task.Name = task.ID
	}
	return task
}
