package cmd

import (
	"fmt"
	"strings"

	"promptforge/config"

	"github.com/spf13/cobra"
)

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsRestoreCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change client settings",
	Long: `Show and change the local client settings.

Keys: ` + strings.Join(config.Keys, ", ") + `

Every key can also be overridden with a ` + config.EnvPrefix + `_<KEY> environment variable.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Long:  "Show the settings after defaults, the settings file, environment variables and flags are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize config manager: %w", err)
		}
		settings, err := manager.Load(cmd.Flags())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, key := range config.Keys {
			fmt.Fprintf(out, "%-18s %s\n", key, settings.Value(key))
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long:  "Validate and store a setting. The previous settings file is kept as a backup.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize config manager: %w", err)
		}
		if err := manager.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setting updated: %s\n", args[0])
		return nil
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Reset a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize config manager: %w", err)
		}
		if err := manager.Unset(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setting reset: %s\n", args[0])
		return nil
	},
}

var settingsRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the settings file from the newest backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize config manager: %w", err)
		}
		backup, err := manager.Restore()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Settings restored from %s\n", backup)
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize config manager: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), manager.Path())
		return nil
	},
}
