package cmd

import (
	"fmt"
	"strconv"

	"promptforge/internal/configsync"
	"promptforge/internal/providers"
	"promptforge/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsSaveCmd)
	configsCmd.AddCommand(configsDeleteCmd)
	rootCmd.AddCommand(configsCmd)

	configsSaveCmd.Flags().StringP("provider", "p", string(providers.Default), "LLM provider: "+providerNames())
	configsSaveCmd.Flags().StringP("api-key", "k", "", "API key for remote providers")
	configsSaveCmd.Flags().StringP("model", "m", "", "Model name (must be offered by the provider)")
}

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage saved LLM configurations",
	Long:  "List, save and delete the (provider, model, API key) configurations stored by the backend",
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	Long:  "List the LLM configurations saved in the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.requestContext(cmd)
		defer cancel()
		configs, err := a.client.ListConfigs(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(configs) == 0 {
			fmt.Fprintln(out, "No saved configurations")
			return nil
		}

		fmt.Fprintln(out, "Saved configurations:")
		for _, cfg := range configs {
			authInfo := ""
			if providers.RequiresCredential(cfg.Provider) {
				authInfo = " (API Key: " + utils.MaskAPIKey(cfg.Credential) + ")"
			}
			fmt.Fprintf(out, "  #%d %s%s\n", cfg.ID, cfg.Label(), authInfo)
		}
		return nil
	},
}

var configsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a configuration",
	Long: `Save a configuration to the backend. The model list is fetched first so
only a model the provider actually offers can be saved:

   promptforge configs save -p ollama -m llama3
   promptforge configs save -p openai -k sk-... -m gpt-4o`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		sync, err := a.session(cmd, true)
		if err != nil {
			return err
		}
		if err := chooseModel(cmd, sync); err != nil {
			return err
		}
		req, err := sync.PrepareSave()
		if err != nil {
			return err
		}

		ctx, cancel := a.requestContext(cmd)
		defer cancel()
		message, err := a.client.SaveConfig(ctx, req)
		if err != nil {
			return err
		}
		a.logger.Info().Str("provider", string(req.Provider)).Str("model", req.Model).
			Str("api_key", utils.MaskAPIKey(req.Credential)).Msg("configuration saved")

		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved configuration",
	Long:  "Delete the saved configuration with the given id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.requestContext(cmd)
		defer cancel()
		message, err := a.client.DeleteConfig(ctx, id)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

// parseID parses a positive backend id
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// describe renders the effective configuration of a session
func describe(st configsync.State) string {
	label := fmt.Sprintf("%s: %s", st.Provider, st.Model)
	if cfg, ok := st.SelectedConfig(); ok {
		label = fmt.Sprintf("#%d %s", cfg.ID, cfg.Label())
	}
	return label
}
