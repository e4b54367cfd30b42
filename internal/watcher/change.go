package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Source identifies which input a change notification refers to.
type Source int

const (
	SourceTasks Source = iota
	SourceHooks
)

// String returns the name of the source.
func (s Source) String() string {
	switch s {
	case SourceTasks:
		return "tasks"
	case SourceHooks:
		return "hooks"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Change signals that a source was modified. Consumers re-read the source.
type Change struct {
	Source Source
}

// changeBuffer is the capacity of the notification channel.
const changeBuffer = 16

// editorTempPatterns are scratch files editors create next to the document.
var editorTempPatterns = []string{"*.swp", "*.swx", "*~", ".#*", "4913"}

// Config names the two observed inputs.
type Config struct {
	TasksPath string
	HooksDir  string
	Debounce  time.Duration
	Logger    *slog.Logger
}

// ChangeWatcher observes the task document and the hooks directory and
// emits at most one Change per source per debounce window.
type ChangeWatcher struct {
	w         *Watcher
	changes   chan Change
	tasksPath string
	hooksDir  string
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewChangeWatcher starts observation. It fails when either path cannot be
// watched; callers then fall back to polling. Cancelling ctx stops the
// watcher and closes the Changes channel.
func NewChangeWatcher(ctx context.Context, cfg Config) (*ChangeWatcher, error) {
	tasksPath, err := filepath.Abs(cfg.TasksPath)
	if err != nil {
		return nil, fmt.Errorf("resolve tasks path: %w", err)
	}
	hooksDir, err := filepath.Abs(cfg.HooksDir)
	if err != nil {
		return nil, fmt.Errorf("resolve hooks dir: %w", err)
	}

	if info, err := os.Stat(tasksPath); err != nil {
		return nil, fmt.Errorf("tasks file: %w", err)
	} else if info.IsDir() {
		return nil, fmt.Errorf("tasks file: %s is a directory", tasksPath)
	}
	if info, err := os.Stat(hooksDir); err != nil {
		return nil, fmt.Errorf("hooks dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("hooks dir: %s is not a directory", hooksDir)
	}

	ctx, cancel := context.WithCancel(ctx)
	cw := &ChangeWatcher{
		changes:   make(chan Change, changeBuffer),
		tasksPath: tasksPath,
		hooksDir:  hooksDir,
		cancel:    cancel,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := New(func(events []Event) { cw.dispatch(ctx, events) },
		WithDebounceDuration(cfg.Debounce),
		WithIgnorePaths(editorTempPatterns),
		WithLogger(logger),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	cw.w = w

	// The document's directory is watched, not the file, so replace-by-rename
	// saves keep being observed.
	for _, dir := range []string{filepath.Dir(tasksPath), hooksDir} {
		if err := w.Add(dir); err != nil {
			cancel()
			_ = w.Close()
			return nil, err
		}
	}

	go func() {
		<-ctx.Done()
		cw.Close()
	}()

	logger.Debug("change watcher started", "tasks", tasksPath, "hooks", hooksDir)
	return cw, nil
}

// Changes returns the notification channel.
func (c *ChangeWatcher) Changes() <-chan Change {
	return c.changes
}

// Close stops observation and closes the Changes channel. Undelivered
// notifications are dropped.
func (c *ChangeWatcher) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.w.Close()
		close(c.changes)
	})
	return err
}

// dispatch maps a batch to at most one notification per source.
func (c *ChangeWatcher) dispatch(ctx context.Context, events []Event) {
	var tasks, hooks bool
	for _, e := range events {
		switch {
		case e.Path == c.tasksPath:
			tasks = true
		case filepath.Dir(e.Path) == c.hooksDir:
			hooks = true
		}
	}

	if tasks {
		c.send(ctx, Change{Source: SourceTasks})
	}
	if hooks {
		c.send(ctx, Change{Source: SourceHooks})
	}
}

func (c *ChangeWatcher) send(ctx context.Context, ch Change) {
	select {
	case c.changes <- ch:
	case <-ctx.Done():
	}
}
