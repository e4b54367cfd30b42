package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/agentboard/internal/config"
	"github.com/Dicklesworthstone/agentboard/internal/output"
	"github.com/Dicklesworthstone/agentboard/internal/state"
	"github.com/Dicklesworthstone/agentboard/internal/tui/dashboard"
	"github.com/Dicklesworthstone/agentboard/internal/tui/theme"
	"github.com/Dicklesworthstone/agentboard/internal/watcher"
)

// watchOptions holds the flags shared by the root command and watch
type watchOptions struct {
	tasks string
	hooks string
	split int
	noAI  bool
}

func addWatchFlags(cmd *cobra.Command, opts *watchOptions) {
	cmd.Flags().StringVar(&opts.tasks, "tasks", "", "Task document to watch (default from config, ./TASKS.md)")
	cmd.Flags().StringVar(&opts.hooks, "hooks", "", "Hook event log directory (default from config, ~/.claude/dashboard)")
	cmd.Flags().IntVar(&opts.split, "split", 0, "Left pane width percentage, 20-80 (default from config, 55)")
	cmd.Flags().BoolVar(&opts.noAI, "no-ai", false, "Hide error category and suggestion")
}

// apply copies explicitly set flags over the loaded config
func (o watchOptions) apply(c *config.Config) {
	if o.tasks != "" {
		c.TasksPath = o.tasks
	}
	if o.hooks != "" {
		c.HooksDir = o.hooks
	}
	if o.split != 0 {
		c.UI.Split = o.split
	}
	if o.noAI {
		c.UI.NoAI = true
	}
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live dashboard (default command)",
		Long: `Open the live dashboard for a task document and its hook event logs.

Both sources are re-read when they change on disk. When filesystem
notifications are unavailable the dashboard polls instead.

Keys:
  j/k, up/down   Move selection
  g/G            Jump to top/bottom
  tab            Cycle focus: tasks, detail, agents
  r              Reload both sources
  q              Quit

Examples:
  agentboard watch
  agentboard watch --tasks plan/TASKS.md --split 40
  agentboard watch --hooks /tmp/events --no-ai`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}
	addWatchFlags(cmd, &opts)
	return cmd
}

func runWatch(cmd *cobra.Command, opts watchOptions) error {
	opts.apply(cfg)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("invalid options: %w", errors.Join(errs...))
	}

	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		// No terminal to draw on; print one snapshot instead
		return runStatus(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.FormatText, 0)
	}

	logger, closeLog, err := newLogger(cfg, true, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	t := theme.Resolve(cfg.Theme)
	theme.Apply(t)

	tasksPath := cfg.ResolvedTasksPath()
	hooksDir := cfg.ResolvedHooksDir()
	dash := state.Load(state.Options{
		TasksPath:     tasksPath,
		HooksDir:      hooksDir,
		ErrorCapacity: cfg.Errors.Capacity,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var changes <-chan watcher.Change
	cw, err := watcher.NewChangeWatcherFromConfig(ctx, watcher.ChangeWatcherConfigValues{
		Enabled:    cfg.Watch.Enabled,
		DebounceMS: cfg.Watch.DebounceMS,
	}, tasksPath, hooksDir, logger)
	switch {
	case errors.Is(err, watcher.ErrDisabled):
		logger.Info("live reload disabled, polling", "interval", cfg.UI.PollInterval())
	case err != nil:
		logger.Warn("live reload unavailable, polling", "error", err, "interval", cfg.UI.PollInterval())
	default:
		defer cw.Close()
		changes = cw.Changes()
	}

	return dashboard.Run(ctx, dashboard.Options{
		Dashboard:    dash,
		Changes:      changes,
		Theme:        t,
		Split:        cfg.UI.Split,
		NoAI:         cfg.UI.NoAI,
		Tick:         cfg.UI.Tick(),
		PollInterval: cfg.UI.PollInterval(),
		Logger:       logger,
	})
}
