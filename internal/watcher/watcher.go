// Package watcher provides file watching with debouncing using fsnotify.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDuration is the window in which raw events are coalesced.
const DefaultDebounceDuration = 100 * time.Millisecond

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("watcher closed")

// EventType is a bitmask of the filesystem operations seen for a path
// within one debounce window.
type EventType uint8

const (
	EventCreate EventType = 1 << iota
	EventWrite
	EventRemove
	EventRename
)

// String returns a compact "create|write" style rendering.
func (t EventType) String() string {
	names := []struct {
		bit  EventType
		name string
	}{
		{EventCreate, "create"},
		{EventWrite, "write"},
		{EventRemove, "remove"},
		{EventRename, "rename"},
	}
	out := ""
	for _, n := range names {
		if t&n.bit == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n.name
	}
	if out == "" {
		return "none"
	}
	return out
}

// Event is one path that changed during a debounce window.
type Event struct {
	Path string
	Type EventType
	Time time.Time
}

// Handler receives one debounced batch, sorted by path.
type Handler func([]Event)

// Watcher wraps an fsnotify watcher and delivers debounced batches to a
// handler from a single goroutine.
type Watcher struct {
	fs       *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	ignore   []string
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the coalescing window. Non-positive values keep the default.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnorePaths drops events whose base name matches any of the glob patterns.
func WithIgnorePaths(patterns []string) Option {
	return func(w *Watcher) {
		w.ignore = append(w.ignore, patterns...)
	}
}

// WithLogger sets the logger used for watcher errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher that calls handler with each debounced batch.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher: nil handler")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		handler:  handler,
		debounce: DefaultDebounceDuration,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w, nil
}

// Add starts watching path. Directories are watched non-recursively.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := w.fs.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	return nil
}

// Close stops the watcher and waits for the delivery goroutine to exit.
// Pending events are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	pending := make(map[string]Event)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			typ := convertOp(ev.Op)
			if typ == 0 || w.ignored(ev.Name) {
				continue
			}
			path := filepath.Clean(ev.Name)
			cur := pending[path]
			cur.Path = path
			cur.Type |= typ
			cur.Time = time.Now()
			pending[path] = cur

			// The window is fixed from the first event so a steady stream
			// still produces regular batches.
			if fire == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case <-fire:
			fire = nil
			batch := make([]Event, 0, len(pending))
			for _, e := range pending {
				batch = append(batch, e)
			}
			pending = make(map[string]Event)
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			w.handler(batch)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if m, _ := filepath.Match(pattern, base); m {
			return true
		}
	}
	return false
}

// convertOp maps fsnotify operations to EventType. Chmod-only events map to zero.
func convertOp(op fsnotify.Op) EventType {
	var t EventType
	if op.Has(fsnotify.Create) {
		t |= EventCreate
	}
	if op.Has(fsnotify.Write) {
		t |= EventWrite
	}
	if op.Has(fsnotify.Remove) {
		t |= EventRemove
	}
	if op.Has(fsnotify.Rename) {
		t |= EventRename
	}
	return t
}
