package cli

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/agentboard/internal/output"
	"github.com/Dicklesworthstone/agentboard/internal/util"
)

//go:embed assets/event-logger.js
var eventLoggerJS []byte

// Hook registration written into settings.json
const (
	hookMatcher = "Task|Edit|Write|Read|Bash|Grep|Glob"
	hookCommand = `node "${HOME}/.claude/hooks/event-logger.js"`
	hookTimeout = 3
	hookScript  = "event-logger.js"
)

// hookEventKeys are the settings.json hook arrays the logger registers in
var hookEventKeys = []string{"PreToolUse", "PostToolUse"}

func newInitCmd() *cobra.Command {
	var home string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install the event-logger hook and register it in settings.json",
		Long: `Prepare a home directory for agentboard:

  1. Create ~/.claude/dashboard (event logs) and ~/.claude/hooks
  2. Write the event-logger.js hook script
  3. Register the script for PreToolUse and PostToolUse in
     ~/.claude/settings.json, keeping every existing setting

Running init again rewrites the script and leaves settings.json alone
once the hook is registered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				h, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("determining home directory: %w", err)
				}
				home = h
			}
			return runInit(cmd.OutOrStdout(), home)
		},
	}

	cmd.Flags().StringVar(&home, "home", "", "Home directory to install into (default $HOME)")
	return cmd
}

func runInit(w io.Writer, home string) error {
	claudeDir := filepath.Join(home, ".claude")
	dashboardDir := filepath.Join(claudeDir, "dashboard")
	hooksDir := filepath.Join(claudeDir, "hooks")

	fmt.Fprintln(w, "[1/3] Creating directories...")
	for _, dir := range []string{dashboardDir, hooksDir} {
		if err := ensureDir(w, dir); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "[2/3] Deploying %s...\n", hookScript)
	scriptPath := filepath.Join(hooksDir, hookScript)
	if _, err := os.Stat(scriptPath); err == nil {
		output.PrintInfof(w, "Overwriting: %s", scriptPath)
	} else {
		output.PrintInfof(w, "Writing: %s", scriptPath)
	}
	if err := util.AtomicWriteFile(scriptPath, eventLoggerJS, 0755); err != nil {
		return fmt.Errorf("writing hook script: %w", err)
	}

	fmt.Fprintln(w, "[3/3] Patching settings.json...")
	if err := patchSettings(w, filepath.Join(claudeDir, "settings.json")); err != nil {
		return err
	}

	fmt.Fprintln(w)
	output.PrintSuccessf(w, "Setup complete. Run `agentboard` to start the dashboard.")
	return nil
}

func ensureDir(w io.Writer, dir string) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		output.PrintInfof(w, "Already exists: %s", dir)
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	output.PrintInfof(w, "Created: %s", dir)
	return nil
}

func hookEntry() map[string]any {
	return map[string]any{
		"matcher": hookMatcher,
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": hookCommand,
				"timeout": hookTimeout,
			},
		},
	}
}

// hasEventLogger reports whether any entry already runs the hook script
func hasEventLogger(entries []any) bool {
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		hooks, ok := entry["hooks"].([]any)
		if !ok {
			continue
		}
		for _, h := range hooks {
			hook, ok := h.(map[string]any)
			if !ok {
				continue
			}
			if cmd, ok := hook["command"].(string); ok && strings.Contains(cmd, hookScript) {
				return true
			}
		}
	}
	return false
}

// patchSettings registers the hook in the settings file at path. Unknown
// keys are preserved; the file is only rewritten when something was added.
func patchSettings(w io.Writer, path string) error {
	settings := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var root any
		if err := json.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		obj, ok := root.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: root is not an object", path)
		}
		settings = obj
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if _, ok := settings["hooks"]; !ok {
		settings["hooks"] = map[string]any{}
	}
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		return fmt.Errorf("%s: 'hooks' is not an object", path)
	}

	patched := false
	for _, key := range hookEventKeys {
		if _, ok := hooks[key]; !ok {
			hooks[key] = []any{}
		}
		entries, ok := hooks[key].([]any)
		if !ok {
			return fmt.Errorf("%s: 'hooks.%s' is not an array", path, key)
		}
		if hasEventLogger(entries) {
			output.PrintInfof(w, "hooks.%s: event-logger already registered", key)
			continue
		}
		hooks[key] = append(entries, hookEntry())
		output.PrintInfof(w, "hooks.%s: added event-logger entry", key)
		patched = true
	}

	if !patched {
		output.PrintInfof(w, "No changes needed")
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	output.PrintInfof(w, "Saved: %s", path)
	return nil
}
