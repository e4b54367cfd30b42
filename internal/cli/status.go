package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/agentboard/internal/config"
	"github.com/Dicklesworthstone/agentboard/internal/output"
	"github.com/Dicklesworthstone/agentboard/internal/state"
)

func newStatusCmd() *cobra.Command {
	var (
		format string
		tasks  string
		hooks  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print a one-shot snapshot of tasks, agents and errors",
		Long: `Parse the task document and replay the hook logs once, then print
the resulting snapshot.

Examples:
  agentboard status
  agentboard status --format json | jq .overall_progress
  agentboard status --tasks plan/TASKS.md --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			watchOptions{tasks: tasks, hooks: hooks}.apply(cfg)
			if errs := config.Validate(cfg); len(errs) > 0 {
				return fmt.Errorf("invalid options: %w", errors.Join(errs...))
			}
			return runStatus(cmd.OutOrStdout(), cmd.ErrOrStderr(), f, terminalWidth())
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVar(&tasks, "tasks", "", "Task document (default from config)")
	cmd.Flags().StringVar(&hooks, "hooks", "", "Hook event log directory (default from config)")
	return cmd
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func runStatus(w, stderr io.Writer, format output.Format, width int) error {
	logger, closeLog, err := newLogger(cfg, false, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	dash := state.Load(state.Options{
		TasksPath:     cfg.ResolvedTasksPath(),
		HooksDir:      cfg.ResolvedHooksDir(),
		ErrorCapacity: cfg.Errors.Capacity,
		Logger:        logger,
	})
	snap := dash.Snapshot()

	return output.New(w, format, width).Render(snap, func(f *output.Formatter) error {
		return renderStatusText(f, snap)
	})
}

func renderStatusText(f *output.Formatter, snap state.Snapshot) error {
	f.Textln("Tasks: %s", snap.TasksPath)
	f.Textln("Hooks: %s", snap.HooksDir)
	f.Textln("%d/%d tasks (%s), %s",
		snap.CompletedTasks, snap.TotalTasks, output.Percent(snap.OverallProgress),
		output.CountStr(snap.FailedTasks, "failed task", "failed tasks"))
	f.Line()

	if len(snap.Phases) > 0 {
		table := f.NewTable("PHASE", "NAME", "DONE", "PROGRESS")
		for _, p := range snap.Phases {
			table.AddRow(p.ID, p.Name,
				fmt.Sprintf("%d/%d", p.Completed(), len(p.Tasks)),
				output.Percent(p.Progress()))
		}
		table.Render()
		f.Line()
	}

	if len(snap.Agents) > 0 {
		table := f.NewTable("AGENT", "STATUS", "TASK", "TOOL", "ERRORS")
		for _, a := range snap.Agents {
			table.AddRow(a.AgentID, a.Status.String(), dashIfEmpty(a.CurrentTask), dashIfEmpty(a.CurrentTool),
				strconv.Itoa(a.ErrorCount))
		}
		table.Render()
		f.Line()
	} else {
		output.PrintInfof(f.Writer(), "No agent events yet")
		f.Line()
	}

	if len(snap.RecentErrors) > 0 {
		table := f.NewTable("TIME", "AGENT", "CATEGORY", "MESSAGE")
		// Newest first
		for i := len(snap.RecentErrors) - 1; i >= 0; i-- {
			rec := snap.RecentErrors[i]
			table.AddRow(rec.Timestamp.Local().Format("15:04:05"), rec.AgentID, rec.Category.String(), rec.Message)
		}
		table.Render()
		f.Line()
	}

	if snap.DecodeErrors > 0 {
		output.PrintWarningf(f.Writer(), "%s rejected in hook logs",
			output.CountStr(snap.DecodeErrors, "line", "lines"))
	}
	if snap.TasksError != "" {
		output.PrintWarningf(f.Writer(), "task document: %s", snap.TasksError)
	}
	if snap.HooksError != "" {
		output.PrintWarningf(f.Writer(), "hook logs: %s", snap.HooksError)
	}
	return nil
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
