// Package cli implements the agentboard command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/agentboard/internal/config"
	"github.com/Dicklesworthstone/agentboard/internal/output"
)

var (
	cfgFile string
	cfg     *config.Config

	// Global color control flag - inherited by all subcommands
	noColor bool

	// Global logging overrides
	logLevel string
	logFile  string

	// Flags of the default (watch) command
	rootWatch watchOptions

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "agentboard",
	Short: "Live dashboard for multi-agent task documents and hook events",
	Long: `agentboard watches a phase/task document and the hook event logs written
by coding agents, and shows task progress, agent activity and classified
errors in one terminal dashboard.

Quick Start:
  agentboard init                      # Install the event-logger hook
  agentboard                           # Watch ./TASKS.md and ~/.claude/dashboard
  agentboard --tasks plan/TASKS.md     # Watch another task document
  agentboard status --format json      # One-shot snapshot for scripts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsConfig(cmd) {
			return nil
		}
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, rootWatch)
	},
}

// skipsConfig reports whether cmd works without a loaded config.
func skipsConfig(cmd *cobra.Command) bool {
	switch cmd.CommandPath() {
	case "agentboard version", "agentboard config path", "agentboard config init":
		return true
	}
	return false
}

// loadConfig reads the config file, then applies env and global flag overrides.
func loadConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if noColor {
		loaded.Theme = "plain"
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFile != "" {
		loaded.Log.File = logFile
	}
	if errs := config.Validate(loaded); len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	cfg = loaded
	return nil
}

// newLogger builds the command logger. The dashboard owns the terminal, so
// without a log file interactive runs discard logs. One-shot commands log to
// stderr at warn unless a level was requested explicitly.
func newLogger(c *config.Config, interactive bool, stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	if c.Log.File != "" {
		f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		return logger, func() { _ = f.Close() }, nil
	}

	if interactive {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if logLevel == "" && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), func() {}, nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// SilenceErrors is set so the error is printed exactly once here
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	var short bool
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			return runVersion(cmd.OutOrStdout(), f, short)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuiltAt   string `json:"built_at" yaml:"built_at"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func buildVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuiltAt:   Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func runVersion(w io.Writer, format output.Format, short bool) error {
	info := buildVersionInfo()
	return output.New(w, format, 0).Render(info, func(f *output.Formatter) error {
		if short {
			f.Textln("%s", info.Version)
			return nil
		}
		f.Textln("agentboard version %s", info.Version)
		f.Textln("  commit:    %s", info.Commit)
		f.Textln("  built:     %s", info.BuiltAt)
		f.Textln("  go:        %s", info.GoVersion)
		f.Textln("  platform:  %s", info.Platform)
		return nil
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/agentboard/config.toml)")

	// Global no-color flag - disables colored output (respects NO_COLOR env var standard)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file")

	addWatchFlags(rootCmd, &rootWatch)

	rootCmd.AddCommand(
		newWatchCmd(),
		newStatusCmd(),
		newInitCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}
