package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const waitTimeout = 3 * time.Second

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]Event
	signal  chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{signal: make(chan struct{}, 64)}
}

func (r *batchRecorder) handle(events []Event) {
	r.mu.Lock()
	r.batches = append(r.batches, events)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for batch")
	}
}

func (r *batchRecorder) snapshot() [][]Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Event(nil), r.batches...)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()

	w, err := New(rec.handle, WithDebounceDuration(150*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	path := filepath.Join(dir, "burst.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	rec.wait(t)
	batches := rec.snapshot()
	if len(batches[0]) != 1 {
		t.Fatalf("first batch has %d events, want 1 coalesced path", len(batches[0]))
	}
	ev := batches[0][0]
	if ev.Path != path {
		t.Errorf("Path = %q, want %q", ev.Path, path)
	}
	if ev.Type&EventWrite == 0 && ev.Type&EventCreate == 0 {
		t.Errorf("Type = %v, want create or write", ev.Type)
	}
}

func TestWatcher_IgnorePaths(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()

	w, err := New(rec.handle,
		WithDebounceDuration(50*time.Millisecond),
		WithIgnorePaths([]string{"*.swp"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".doc.swp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(keep, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rec.wait(t)
	for _, batch := range rec.snapshot() {
		for _, ev := range batch {
			if filepath.Ext(ev.Path) == ".swp" {
				t.Errorf("ignored path delivered: %s", ev.Path)
			}
		}
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := New(func([]Event) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Add(t.TempDir()); !errors.Is(err, ErrClosed) {
		t.Errorf("Add after Close = %v, want ErrClosed", err)
	}
}

func TestNew_NilHandler(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) succeeded, want error")
	}
}

func TestEventTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  EventType
		want string
	}{
		{0, "none"},
		{EventCreate, "create"},
		{EventCreate | EventWrite, "create|write"},
		{EventRemove | EventRename, "remove|rename"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func setupSources(t *testing.T) (tasksPath, hooksDir string) {
	t.Helper()
	root := t.TempDir()
	tasksPath = filepath.Join(root, "TASKS.md")
	hooksDir = filepath.Join(root, "hooks")
	if err := os.WriteFile(tasksPath, []byte("## Phase 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(hooksDir, 0755); err != nil {
		t.Fatal(err)
	}
	return tasksPath, hooksDir
}

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatal("changes channel closed")
		}
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func TestChangeWatcher_TasksSource(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cw, err := NewChangeWatcher(ctx, Config{TasksPath: tasksPath, HooksDir: hooksDir, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewChangeWatcher: %v", err)
	}
	defer cw.Close()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(tasksPath, []byte("## Phase 1\n- [x] T1: done\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if c := receive(t, cw.Changes()); c.Source != SourceTasks {
		t.Errorf("Source = %v, want tasks", c.Source)
	}
}

func TestChangeWatcher_HooksSource(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cw, err := NewChangeWatcher(ctx, Config{TasksPath: tasksPath, HooksDir: hooksDir, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewChangeWatcher: %v", err)
	}
	defer cw.Close()

	if err := os.WriteFile(filepath.Join(hooksDir, "events.jsonl"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if c := receive(t, cw.Changes()); c.Source != SourceHooks {
		t.Errorf("Source = %v, want hooks", c.Source)
	}
}

func TestChangeWatcher_IgnoresSiblingFiles(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cw, err := NewChangeWatcher(ctx, Config{TasksPath: tasksPath, HooksDir: hooksDir, Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewChangeWatcher: %v", err)
	}
	defer cw.Close()

	if err := os.WriteFile(filepath.Join(filepath.Dir(tasksPath), "README.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-cw.Changes():
		t.Errorf("unexpected change %v for unrelated file", c.Source)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestChangeWatcher_CancelClosesChannel(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	ctx, cancel := context.WithCancel(context.Background())

	cw, err := NewChangeWatcher(ctx, Config{TasksPath: tasksPath, HooksDir: hooksDir})
	if err != nil {
		t.Fatalf("NewChangeWatcher: %v", err)
	}
	cancel()

	select {
	case _, ok := <-cw.Changes():
		if ok {
			// A change raced the cancel; the channel must still close.
			for range cw.Changes() {
			}
		}
	case <-time.After(waitTimeout):
		t.Fatal("channel not closed after cancel")
	}
}

func TestChangeWatcher_StartFailures(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing tasks file", Config{TasksPath: missing, HooksDir: hooksDir}},
		{"missing hooks dir", Config{TasksPath: tasksPath, HooksDir: missing}},
		{"hooks dir is a file", Config{TasksPath: tasksPath, HooksDir: tasksPath}},
		{"tasks path is a dir", Config{TasksPath: hooksDir, HooksDir: hooksDir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cw, err := NewChangeWatcher(context.Background(), tt.cfg)
			if err == nil {
				cw.Close()
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewChangeWatcherFromConfig_Disabled(t *testing.T) {
	tasksPath, hooksDir := setupSources(t)
	cfg := DefaultChangeWatcherConfigValues()
	cfg.Enabled = false

	_, err := NewChangeWatcherFromConfig(context.Background(), cfg, tasksPath, hooksDir, nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestDefaultChangeWatcherConfigValues(t *testing.T) {
	t.Parallel()

	cfg := DefaultChangeWatcherConfigValues()
	if !cfg.Enabled || cfg.DebounceMS != 100 {
		t.Errorf("defaults = %+v, want enabled with 100ms", cfg)
	}
}

func TestSourceString(t *testing.T) {
	t.Parallel()

	if SourceTasks.String() != "tasks" || SourceHooks.String() != "hooks" {
		t.Errorf("names = %q, %q", SourceTasks, SourceHooks)
	}
	if got := Source(7).String(); got != "source(7)" {
		t.Errorf("Source(7).String() = %q", got)
	}
}
