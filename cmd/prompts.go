package cmd

import (
	"fmt"
	"io"
	"strings"

	"promptforge/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsSaveCmd)
	promptsCmd.AddCommand(promptsDeleteCmd)
	rootCmd.AddCommand(promptsCmd)

	promptsListCmd.Flags().Bool("full", false, "Print whole prompts instead of their first line")
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage saved prompts",
	Long:  "List, save and delete generated prompts stored by the backend",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved prompts",
	Long:  "List the prompts saved in the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.requestContext(cmd)
		defer cancel()
		prompts, err := a.client.ListPrompts(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(prompts) == 0 {
			fmt.Fprintln(out, "No saved prompts")
			return nil
		}

		full, _ := cmd.Flags().GetBool("full")
		for _, p := range prompts {
			if full {
				fmt.Fprintf(out, "#%d\n%s\n\n", p.ID, p.Text)
				continue
			}
			fmt.Fprintf(out, "#%d %s\n", p.ID, utils.Truncate(utils.FirstLine(p.Text), 72))
		}
		return nil
	},
}

var promptsSaveCmd = &cobra.Command{
	Use:   "save [text]",
	Short: "Save a prompt",
	Long:  "Save a prompt to the backend. Without an argument, or with \"-\", the prompt is read from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := promptText(cmd, args)
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
		message, err := a.client.SavePrompt(ctx, text)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved prompt",
	Long:  "Delete the saved prompt with the given id",
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
		message, err := a.client.DeletePrompt(ctx, id)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func promptText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
