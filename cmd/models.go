package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	addConfigurationFlags(modelsCmd)
	addConfigurationFlags(testCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(testCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models a provider offers",
	Long: `List the models available for a saved configuration or a provider:

   promptforge models --config 7
   promptforge models -p openai -k sk-...`,
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

		st := sync.Snapshot()
		out := cmd.OutOrStdout()
		if len(st.AvailableModels) == 0 {
			fmt.Fprintln(out, "No models available")
			return nil
		}
		for _, name := range st.AvailableModels {
			marker := " "
			if name == st.Model {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, name)
		}
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to an LLM provider",
	Long: `Ask the backend to test the connection to a provider. Remote providers
need an API key, which is checked before anything is sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		sync, err := a.session(cmd, false)
		if err != nil {
			return err
		}

		ticket, err := sync.TestConnection()
		if err != nil {
			return err
		}
		sync.ApplyTest(ticket, a.runner.Test(commandContext(cmd), ticket))

		result := sync.Snapshot().LastTest
		if !result.Succeeded() {
			return errors.New(result.Message)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", result.Message)
		return nil
	},
}
