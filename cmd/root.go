package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"promptforge/config"
	"promptforge/internal/backend"
	"promptforge/internal/tui"

	"github.com/spf13/cobra"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var rootCmd = &cobra.Command{
	Use:   "promptforge",
	Short: "Terminal client for the prompt generation backend",
	Long: `Assemble prompt parameters, pick an LLM configuration and generate prompts.

Run without arguments to open the interactive interface, or use the
subcommands for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding settings.json (default $XDG_CONFIG_HOME/promptforge)")
	rootCmd.PersistentFlags().String("backend-url", "", "Backend base URL (overrides settings)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides settings)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also write logs to stderr")
}

// runInteractive opens the TUI
func runInteractive(cmd *cobra.Command, args []string) error {
	if !tui.IsTerminal() {
		return errors.New("promptforge TUI requires a terminal. Use subcommands for non-interactive mode")
	}

	// The TUI owns the terminal, logs only go to the file
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	reloads := make(chan tui.SettingsReloadedMsg, 1)
	if _, err := a.manager.Watch(ctx, cmd.Flags(), a.reloader(ctx, reloads)); err != nil {
		a.logger.Warn().Err(err).Msg("settings changes will not be picked up")
	}

	a.logger.Info().Str("backend", a.client.BaseURL()).Msg("starting interactive session")
	return tui.Run(tui.Options{
		Backend:        a.client,
		Runner:         a.runner,
		Logger:         a.logger.Component("tui"),
		RequestTimeout: a.settings.RequestTimeout,
		Reloads:        reloads,
	})
}

// reloader rebuilds the backend whenever the settings file changes and hands
// it to the TUI
func (a *app) reloader(ctx context.Context, out chan<- tui.SettingsReloadedMsg) func(*config.Settings, error) {
	return func(settings *config.Settings, err error) {
		msg := tui.SettingsReloadedMsg{Err: err}
		if err == nil {
			var client *backend.Client
			client, msg.Runner, msg.Err = buildBackend(settings, a.logger)
			if msg.Err == nil {
				msg.Backend = client
				msg.RequestTimeout = settings.RequestTimeout
				a.logger.Info().Str("backend", settings.BackendURL).Msg("settings reloaded")
			}
		}
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	}
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`promptforge {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	// Ctrl-C cancels in-flight requests of subcommands
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
