// Package config loads dashboard settings from a TOML file with environment overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/agentboard/internal/util"
)

// Config represents the main configuration
type Config struct {
	TasksPath string       `toml:"tasks_path"`
	HooksDir  string       `toml:"hooks_dir"`
	Theme     string       `toml:"theme"` // UI Theme (mocha, latte, nord, plain, auto)
	UI        UIConfig     `toml:"ui"`
	Watch     WatchConfig  `toml:"watch"`
	Errors    ErrorsConfig `toml:"errors"`
	Log       LogConfig    `toml:"log"`
}

// UIConfig holds dashboard rendering settings
type UIConfig struct {
	Split          int  `toml:"split"`            // Left pane width percentage (20-80)
	TickMS         int  `toml:"tick_ms"`          // Redraw and notification drain interval
	PollIntervalMS int  `toml:"poll_interval_ms"` // Reload interval when live reload is unavailable
	NoAI           bool `toml:"no_ai"`            // Hide error category and suggestion
}

// DefaultUIConfig returns the default dashboard settings
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Split:          55,
		TickMS:         250,
		PollIntervalMS: 2000,
		NoAI:           false,
	}
}

// Tick returns the redraw interval as a duration
func (c UIConfig) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// PollInterval returns the degraded-mode reload interval as a duration
func (c UIConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ValidateUIConfig validates the dashboard settings
func ValidateUIConfig(cfg *UIConfig) error {
	if cfg.Split < 20 || cfg.Split > 80 {
		return fmt.Errorf("split must be between 20 and 80, got %d", cfg.Split)
	}
	if cfg.TickMS < 16 || cfg.TickMS > 5000 {
		return fmt.Errorf("tick_ms must be between 16 and 5000, got %d", cfg.TickMS)
	}
	if cfg.PollIntervalMS < 100 {
		return fmt.Errorf("poll_interval_ms must be at least 100, got %d", cfg.PollIntervalMS)
	}
	return nil
}

// WatchConfig holds live reload settings
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`     // Watch sources with fsnotify
	DebounceMS int  `toml:"debounce_ms"` // Coalescing window for filesystem events
}

// DefaultWatchConfig returns the default live reload settings
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Enabled:    true,
		DebounceMS: 100,
	}
}

// ValidateWatchConfig validates the live reload settings
func ValidateWatchConfig(cfg *WatchConfig) error {
	if cfg.DebounceMS < 10 || cfg.DebounceMS > 10000 {
		return fmt.Errorf("debounce_ms must be between 10 and 10000, got %d", cfg.DebounceMS)
	}
	return nil
}

// ErrorsConfig holds recent-error history settings
type ErrorsConfig struct {
	Capacity int `toml:"capacity"` // Number of recent errors kept
}

// ValidateErrorsConfig validates the error history settings
func ValidateErrorsConfig(cfg *ErrorsConfig) error {
	if cfg.Capacity < 1 || cfg.Capacity > 10000 {
		return fmt.Errorf("capacity must be between 1 and 10000, got %d", cfg.Capacity)
	}
	return nil
}

// LogConfig holds diagnostic logging settings
type LogConfig struct {
	File  string `toml:"file"`  // Log file for the dashboard (empty discards)
	Level string `toml:"level"` // debug, info, warn, error
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: want debug, info, warn or error", name)
	}
	return level, nil
}

// ValidThemes lists the accepted theme names
var ValidThemes = []string{"auto", "mocha", "latte", "nord", "plain"}

// IsValidTheme reports whether name is an accepted theme
func IsValidTheme(name string) bool {
	for _, t := range ValidThemes {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if env := os.Getenv("AGENTBOARD_CONFIG"); env != "" {
		return util.ExpandHome(env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentboard", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fallback to /tmp when home directory is unavailable (e.g., containers)
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "agentboard", "config.toml")
}

// DefaultTasksPath is the task document looked up in the working directory
const DefaultTasksPath = "./TASKS.md"

// DefaultHooksDir is where the hook script appends event logs
const DefaultHooksDir = "~/.claude/dashboard"

// Default returns the default configuration
func Default() *Config {
	return &Config{
		TasksPath: DefaultTasksPath,
		HooksDir:  DefaultHooksDir,
		Theme:     "auto",
		UI:        DefaultUIConfig(),
		Watch:     DefaultWatchConfig(),
		Errors:    ErrorsConfig{Capacity: 50},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads config from path (DefaultPath when empty). A missing file
// yields the defaults; environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	// 1. Initialize with defaults
	cfg := Default()

	// 2. Read and unmarshal TOML over defaults
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Apply Environment Variable Overrides (Env > TOML > Default)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if tasks := os.Getenv("AGENTBOARD_TASKS"); tasks != "" {
		cfg.TasksPath = tasks
	}
	if hooks := os.Getenv("AGENTBOARD_HOOKS_DIR"); hooks != "" {
		cfg.HooksDir = hooks
	}
	if level := os.Getenv("AGENTBOARD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if noColor := os.Getenv("AGENTBOARD_NO_COLOR"); noColor != "" {
		if v, err := strconv.ParseBool(noColor); err == nil && v {
			cfg.Theme = "plain"
		}
	}
}

// ResolvedTasksPath returns the task document path with ~ expanded
func (c *Config) ResolvedTasksPath() string {
	return util.ExpandHome(c.TasksPath)
}

// ResolvedHooksDir returns the hooks directory with ~ expanded
func (c *Config) ResolvedHooksDir() string {
	return util.ExpandHome(c.HooksDir)
}

// Validate checks the configuration and returns every problem found
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	if strings.TrimSpace(cfg.TasksPath) == "" {
		errs = append(errs, fmt.Errorf("tasks_path: must not be empty"))
	}
	if strings.TrimSpace(cfg.HooksDir) == "" {
		errs = append(errs, fmt.Errorf("hooks_dir: must not be empty"))
	}
	if cfg.Theme != "" && !IsValidTheme(cfg.Theme) {
		errs = append(errs, fmt.Errorf("theme: must be one of %s, got %q", strings.Join(ValidThemes, ", "), cfg.Theme))
	}

	if err := ValidateUIConfig(&cfg.UI); err != nil {
		errs = append(errs, fmt.Errorf("ui: %w", err))
	}
	if err := ValidateWatchConfig(&cfg.Watch); err != nil {
		errs = append(errs, fmt.Errorf("watch: %w", err))
	}
	if err := ValidateErrorsConfig(&cfg.Errors); err != nil {
		errs = append(errs, fmt.Errorf("errors: %w", err))
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errs
}

// Print writes cfg as a commented TOML document
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# agentboard configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Task document (phases and tasks)")
	fmt.Fprintf(w, "tasks_path = %q\n", cfg.TasksPath)
	fmt.Fprintln(w, "# Directory the hook script appends *.jsonl event logs to")
	fmt.Fprintf(w, "hooks_dir = %q\n", cfg.HooksDir)
	fmt.Fprintln(w, "# UI Theme (mocha, latte, nord, plain, auto)")
	fmt.Fprintf(w, "theme = %q\n", cfg.Theme)
	fmt.Fprintln(w)

	// The tables are emitted by the encoder so key names stay in sync with the struct tags.
	sections := []struct {
		comment string
		name    string
		value   interface{}
	}{
		{"Dashboard layout and refresh", "ui", cfg.UI},
		{"Live reload", "watch", cfg.Watch},
		{"Recent error history", "errors", cfg.Errors},
		{"Diagnostic log (the dashboard owns the terminal)", "log", cfg.Log},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "# %s\n[%s]\n", s.comment, s.name)
		if err := toml.NewEncoder(w).Encode(s.value); err != nil {
			return fmt.Errorf("encoding %s: %w", s.name, err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// CreateDefault writes the default config to DefaultPath if none exists
func CreateDefault() (string, error) {
	path := DefaultPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	// Write default config
	var buffer strings.Builder
	if err := Print(Default(), &buffer); err != nil {
		return "", err
	}

	if err := util.AtomicWriteFile(path, []byte(buffer.String()), 0644); err != nil {
		return "", err
	}

	return path, nil
}
