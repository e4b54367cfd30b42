// Package watcher provides file watching with debouncing using fsnotify.
// config.go provides helper functions to create watchers from config.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrDisabled is returned when live reload is turned off in config.
var ErrDisabled = errors.New("live reload disabled")

// ChangeWatcherConfigValues holds the values needed to configure a ChangeWatcher.
// This struct avoids import cycles by using primitive types instead of config.WatchConfig.
type ChangeWatcherConfigValues struct {
	Enabled    bool
	DebounceMS int
}

// NewChangeWatcherFromConfig creates a ChangeWatcher configured from the
// provided config values. It returns ErrDisabled when watching is off.
func NewChangeWatcherFromConfig(
	ctx context.Context,
	cfg ChangeWatcherConfigValues,
	tasksPath string,
	hooksDir string,
	logger *slog.Logger,
) (*ChangeWatcher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	c := Config{
		TasksPath: tasksPath,
		HooksDir:  hooksDir,
		Logger:    logger,
	}

	// Apply debounce window from config
	if cfg.DebounceMS > 0 {
		c.Debounce = time.Duration(cfg.DebounceMS) * time.Millisecond
	}

	return NewChangeWatcher(ctx, c)
}

// DefaultChangeWatcherConfigValues returns the default values for watch config.
// Use this when config is not available or as a fallback.
func DefaultChangeWatcherConfigValues() ChangeWatcherConfigValues {
	return ChangeWatcherConfigValues{
		Enabled:    true,
		DebounceMS: int(DefaultDebounceDuration / time.Millisecond),
	}
}
