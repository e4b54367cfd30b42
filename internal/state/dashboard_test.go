package state

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/agentboard/internal/agent"
	"github.com/Dicklesworthstone/agentboard/internal/tasks"
	"github.com/Dicklesworthstone/agentboard/internal/watcher"
)

const (
	evStart = `{"event_type":"agent_start","timestamp":"2026-03-01T10:00:00Z","agent_id":"backend-specialist-1","task_id":"P1-R1-T1","session_id":"s1"}`
	evTool  = `{"event_type":"tool_start","timestamp":"2026-03-01T10:00:01Z","agent_id":"backend-specialist-1","task_id":"P1-R1-T1","session_id":"s1","tool_name":"Edit"}`
	evError = `{"event_type":"error","timestamp":"2026-03-01T10:00:02Z","agent_id":"frontend-specialist","task_id":"P2-T3","session_id":"s2","error_message":"connection refused: host:5432"}`
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	tasksPath string
	hooksDir  string
	logPath   string
}

func newFixture(t *testing.T, logLines ...string) fixture {
	t.Helper()
	root := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "sample_tasks.md"))
	if err != nil {
		t.Fatal(err)
	}
	f := fixture{
		tasksPath: filepath.Join(root, "TASKS.md"),
		hooksDir:  filepath.Join(root, "dashboard"),
	}
	f.logPath = filepath.Join(f.hooksDir, "events.jsonl")
	if err := os.WriteFile(f.tasksPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(f.hooksDir, 0755); err != nil {
		t.Fatal(err)
	}
	body := ""
	if len(logLines) > 0 {
		body = strings.Join(logLines, "\n") + "\n"
	}
	if err := os.WriteFile(f.logPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f fixture) load() *Dashboard {
	return Load(Options{TasksPath: f.tasksPath, HooksDir: f.hooksDir, ErrorCapacity: 10, Logger: quietLogger()})
}

func (f fixture) appendLog(t *testing.T, lines ...string) {
	t.Helper()
	fh, err := os.OpenFile(f.logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	if _, err := fh.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_SampleSources(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evStart, evTool, "garbage", evError)
	d := f.load()

	total, completed, failed := d.Counts()
	if total != 8 || completed != 1 || failed != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 8/1/1", total, completed, failed)
	}
	if p := d.OverallProgress(); p <= 0 || p >= 1 {
		t.Errorf("OverallProgress() = %f, want strictly between 0 and 1", p)
	}

	if got := len(d.Agents()); got != 2 {
		t.Fatalf("len(Agents()) = %d, want 2", got)
	}
	backend, _ := d.Agent("backend-specialist-1")
	if backend.Status != agent.StatusRunning || backend.CurrentTool != "Edit" {
		t.Errorf("backend = %+v, want running with Edit", backend)
	}
	if d.AgentCount(agent.StatusError) != 1 {
		t.Errorf("AgentCount(error) = %d, want 1", d.AgentCount(agent.StatusError))
	}

	errs := d.RecentErrors()
	if len(errs) != 1 || errs[0].Category != agent.CategoryNetwork || !errs[0].Retryable {
		t.Errorf("RecentErrors() = %+v, want one retryable Network error", errs)
	}

	n, rejected := d.DecodeErrors()
	if n != 1 || len(rejected) != 1 || rejected[0].Line != 3 {
		t.Errorf("DecodeErrors() = %d, %+v; want 1 at line 3", n, rejected)
	}
	if d.TasksError() != nil || d.HooksError() != nil {
		t.Errorf("unexpected errors: tasks=%v hooks=%v", d.TasksError(), d.HooksError())
	}
}

func TestLoad_MissingSourcesFallBackToEmpty(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	d := Load(Options{
		TasksPath: filepath.Join(root, "TASKS.md"),
		HooksDir:  filepath.Join(root, "nope"),
		Logger:    quietLogger(),
	})

	if d.TotalItems() != 0 || len(d.Agents()) != 0 {
		t.Errorf("expected empty state, got %d items %d agents", d.TotalItems(), len(d.Agents()))
	}
	if d.OverallProgress() != 0 {
		t.Errorf("OverallProgress() = %f, want 0", d.OverallProgress())
	}
	if !errors.Is(d.TasksError(), fs.ErrNotExist) {
		t.Errorf("TasksError() = %v, want ErrNotExist", d.TasksError())
	}
	if !errors.Is(d.HooksError(), fs.ErrNotExist) {
		t.Errorf("HooksError() = %v, want ErrNotExist", d.HooksError())
	}
}

func TestRebuildFromTasks_KeepsStaleOnFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.load()

	err := d.RebuildFromTasks("no phases here\n")
	var fmtErr *tasks.DocumentFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("err = %v, want *DocumentFormatError", err)
	}
	if total, _, _ := d.Counts(); total != 8 {
		t.Errorf("total after failed rebuild = %d, want 8 (stale kept)", total)
	}
	if d.TotalItems() != 11 {
		t.Errorf("TotalItems() = %d, want 11", d.TotalItems())
	}
	if d.TasksError() == nil {
		t.Error("TasksError() = nil after failed rebuild")
	}

	if err := d.RebuildFromTasks("## Phase 9: Only\n- [x] A: one\n"); err != nil {
		t.Fatalf("RebuildFromTasks: %v", err)
	}
	if d.TotalItems() != 2 || d.OverallProgress() != 1 {
		t.Errorf("after rebuild: items=%d progress=%f", d.TotalItems(), d.OverallProgress())
	}
	if d.TasksError() != nil {
		t.Errorf("TasksError() = %v after success", d.TasksError())
	}
}

func TestIngestEvents_DoesNotTouchPhases(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.load()
	before := d.TotalItems()

	d.IngestEvents(nil)
	if d.TotalItems() != before {
		t.Errorf("TotalItems changed from %d to %d", before, d.TotalItems())
	}
}

func TestApplyChange_Tasks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.load()

	if err := os.WriteFile(f.tasksPath, []byte("## Phase 1: New\n- [x] T1: a\n- [ ] T2: b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := d.ApplyChange(watcher.Change{Source: watcher.SourceTasks}); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if total, completed, _ := d.Counts(); total != 2 || completed != 1 {
		t.Errorf("Counts() = %d/%d, want 2/1", total, completed)
	}

	if err := os.Remove(f.tasksPath); err != nil {
		t.Fatal(err)
	}
	if err := d.ApplyChange(watcher.Change{Source: watcher.SourceTasks}); err == nil {
		t.Error("ApplyChange on missing file returned nil error")
	}
	if total, _, _ := d.Counts(); total != 2 {
		t.Errorf("total after missing file = %d, want 2 (no-op)", total)
	}
}

func TestApplyChange_HooksIncremental(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evStart)
	d := f.load()

	f.appendLog(t, evTool)
	if err := d.ApplyChange(watcher.Change{Source: watcher.SourceHooks}); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	st, _ := d.Agent("backend-specialist-1")
	if st.EventCount != 2 {
		t.Errorf("EventCount = %d, want 2 (each line applied once)", st.EventCount)
	}
	if st.CurrentTask != "P1-R1-T1" || st.CurrentTool != "Edit" {
		t.Errorf("state = %+v", st)
	}
}

func TestApplyChange_HooksTruncationReplays(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evStart, evTool, evError)
	d := f.load()

	if err := os.WriteFile(f.logPath, []byte(evStart+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := d.ApplyChange(watcher.Change{Source: watcher.SourceHooks}); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if got := len(d.Agents()); got != 1 {
		t.Errorf("len(Agents()) = %d, want 1 after replay", got)
	}
	if got := len(d.RecentErrors()); got != 0 {
		t.Errorf("len(RecentErrors()) = %d, want 0 after replay", got)
	}
	st, _ := d.Agent("backend-specialist-1")
	if st.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", st.EventCount)
	}
}

func TestApplyChange_MissingHooksDirIsNoOp(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evStart)
	d := f.load()

	if err := os.RemoveAll(f.hooksDir); err != nil {
		t.Fatal(err)
	}
	if err := d.ApplyChange(watcher.Change{Source: watcher.SourceHooks}); err == nil {
		t.Error("expected error for missing hooks dir")
	}
	if len(d.Agents()) != 1 {
		t.Errorf("agents dropped on I/O failure: %d", len(d.Agents()))
	}
}

func TestReload(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evStart)
	d := f.load()

	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st, _ := d.Agent("backend-specialist-1")
	if st.EventCount != 1 {
		t.Errorf("EventCount = %d after reload, want 1 (replayed, not doubled)", st.EventCount)
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	t.Parallel()
	f := newFixture(t, evError)
	d := f.load()

	snap := d.Snapshot()
	if snap.TotalTasks != 8 || snap.CompletedTasks != 1 || snap.FailedTasks != 1 {
		t.Errorf("snapshot counters = %d/%d/%d", snap.TotalTasks, snap.CompletedTasks, snap.FailedTasks)
	}
	if len(snap.Phases) != 3 || len(snap.RecentErrors) != 1 || len(snap.Agents) != 1 {
		t.Fatalf("snapshot sizes: phases=%d errors=%d agents=%d", len(snap.Phases), len(snap.RecentErrors), len(snap.Agents))
	}

	snap.Phases[0].Tasks[0].Status = tasks.StatusFailed
	if _, _, failed := d.Counts(); failed != 1 {
		t.Errorf("mutating snapshot changed dashboard: failed = %d", failed)
	}
}
