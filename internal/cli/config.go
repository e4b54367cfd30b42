package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/agentboard/internal/config"
	"github.com/Dicklesworthstone/agentboard/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			output.PrintSuccessf(cmd.OutOrStdout(), "Created config file: %s", path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			if cfgFile != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfgFile)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration (file, env and flags merged)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Print(cfg, cmd.OutOrStdout())
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			// PersistentPreRunE already rejected an invalid config
			output.PrintSuccessf(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}
