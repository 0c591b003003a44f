package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"promptforge/config"
	"promptforge/internal/backend"
	"promptforge/internal/configsync"
	"promptforge/internal/logging"
	"promptforge/internal/providers"

	"github.com/spf13/cobra"
)

// app bundles what every command needs: settings, logger, backend client and runner
type app struct {
	manager  *config.Manager
	settings *config.Settings
	logger   *logging.Logger
	client   *backend.Client
	runner   *configsync.Runner
}

// newManager honors --config-dir
func newManager(cmd *cobra.Command) (*config.Manager, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir != "" {
		return config.NewManagerAt(dir)
	}
	return config.NewManager()
}

// loadApp resolves settings and builds the logger, client and runner.
// console copies logs to stderr when --verbose is set.
func loadApp(cmd *cobra.Command, console bool) (*app, error) {
	manager, err := newManager(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}
	settings, err := manager.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{File: settings.LogFile, Level: settings.LogLevel}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && console {
		logCfg.Console = cmd.ErrOrStderr()
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	client, runner, err := buildBackend(settings, logger)
	if err != nil {
		logger.Close()
		return nil, err
	}

	logger.Debug().Str("command", cmd.CommandPath()).Str("backend", settings.BackendURL).Msg("command started")
	return &app{manager: manager, settings: settings, logger: logger, client: client, runner: runner}, nil
}

// buildBackend creates the backend client and the runner for settings
func buildBackend(settings *config.Settings, logger *logging.Logger) (*backend.Client, *configsync.Runner, error) {
	client, err := backend.NewClient(settings.BackendURL,
		backend.WithLogger(logger.Component("backend")),
		backend.WithHTTPClient(&http.Client{}),
	)
	if err != nil {
		return nil, nil, err
	}

	runner := configsync.NewRunner(client,
		configsync.WithGenerateTimeout(settings.GenerateTimeout),
		configsync.WithRequestTimeout(settings.RequestTimeout),
		configsync.WithRunnerLogger(logger.Component("runner")),
	)
	return client, runner, nil
}

// Close releases the log file
func (a *app) Close() {
	_ = a.logger.Close()
}

// requestContext bounds a single list/save/delete call
func (a *app) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), a.settings.RequestTimeout)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// addConfigurationFlags registers the flags that pick an LLM configuration
func addConfigurationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("config", 0, "Use the saved configuration with this id")
	cmd.Flags().StringP("provider", "p", string(providers.Default), "LLM provider: "+providerNames())
	cmd.Flags().StringP("api-key", "k", "", "API key for remote providers")
}

func providerNames() string {
	names := make([]string, 0, len(providers.List()))
	for _, c := range providers.List() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// session drives a synchronizer the same way the TUI does: either a saved
// configuration is selected, or the provider and credential are entered
// manually. With fetch set, the model list is refreshed and applied.
func (a *app) session(cmd *cobra.Command, fetch bool) (*configsync.Synchronizer, error) {
	ctx := commandContext(cmd)
	sync := configsync.New()

	var ticket configsync.RefreshTicket
	var ok bool

	id, _ := cmd.Flags().GetInt64("config")
	if id != 0 {
		reqCtx, cancel := a.requestContext(cmd)
		configs, err := a.client.ListConfigs(reqCtx)
		cancel()
		if err != nil {
			return nil, err
		}
		sync.ApplyConfigurations(configs)
		ticket, ok = sync.SelectSavedConfiguration(id)
		if !ok {
			return nil, fmt.Errorf("configuration %d not found", id)
		}
	} else {
		name, _ := cmd.Flags().GetString("provider")
		choice, err := providers.Parse(name)
		if err != nil {
			return nil, err
		}
		if ticket, ok, err = sync.SetProvider(choice); err != nil {
			return nil, err
		}
		key, _ := cmd.Flags().GetString("api-key")
		if key != "" {
			if ticket, ok, err = sync.SetCredential(key); err != nil {
				return nil, err
			}
		}
	}

	if !fetch {
		return sync, nil
	}
	if !ok {
		st := sync.Snapshot()
		return nil, backend.NewValidationError("%s requires an API key", providers.DisplayName(st.Provider))
	}
	res := a.runner.FetchModels(ctx, ticket)
	sync.ApplyModels(ticket, res)
	if res.Err != nil {
		return nil, fmt.Errorf("could not list models: %w", res.Err)
	}
	return sync, nil
}

// chooseModel selects --model on a manual session. Saved configurations keep
// their own model.
func chooseModel(cmd *cobra.Command, sync *configsync.Synchronizer) error {
	model, _ := cmd.Flags().GetString("model")
	if model == "" || sync.Snapshot().Selected {
		return nil
	}
	if err := sync.SelectModel(model); err != nil {
		return fmt.Errorf("model %q: %w", model, err)
	}
	return nil
}
