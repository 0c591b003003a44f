package cmd

import (
	"errors"
	"fmt"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
	"promptforge/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	addConfigurationFlags(generateCmd)
	f := generateCmd.Flags()
	f.StringP("model", "m", "", "Model for manual configurations")
	f.StringP("role", "r", "", "Role the generated prompt gives the model (required)")
	f.StringP("task", "t", "", "Task the generated prompt describes (required)")
	f.String("example", configsync.ExampleOptions[0], "Example style, or the example text itself with --custom-example")
	f.String("custom-example", "", "Custom example text")
	f.String("reasoning", configsync.ReasoningOptions[0], "Reasoning style")
	f.String("rag-context", "", "External context to ground the prompt in")
	f.String("output-format", configsync.DefaultOutputFormat, "Output format")
	f.String("prompt-format", configsync.PromptFormatOptions[0], "Prompt format")
	f.Bool("save", false, "Save the generated prompt to the backend")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a prompt",
	Long: `Generate a prompt with a saved configuration or a manual one:

   promptforge generate --config 7 -r "math teacher" -t "explain recursion"
   promptforge generate -p ollama -m llama3 -r critic -t "review my essay" --rag-context "$(cat essay.txt)"

The generated prompt is written to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := formFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		// Only a manual --model has to be checked against the model list;
		// everything else is validated locally before the first request.
		model, _ := cmd.Flags().GetString("model")
		id, _ := cmd.Flags().GetInt64("config")
		sync, err := a.session(cmd, id == 0 && model != "")
		if err != nil {
			return err
		}
		if err := chooseModel(cmd, sync); err != nil {
			return err
		}

		ticket, err := sync.PrepareGeneration(form)
		if err != nil {
			return err
		}
		a.logger.Info().Str("config", describe(sync.Snapshot())).
			Str("api_key", utils.MaskAPIKey(ticket.Request.Credential)).Msg("generating prompt")

		sync.FinishGeneration(ticket, a.runner.Generate(commandContext(cmd), ticket))
		st := sync.Snapshot()
		if st.GenerateError != "" {
			return errors.New(st.GenerateError)
		}
		fmt.Fprintln(cmd.OutOrStdout(), st.Output)

		if save, _ := cmd.Flags().GetBool("save"); save {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			message, err := a.client.SavePrompt(ctx, st.Output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}
		return nil
	},
}

// formFromFlags builds the prompt form; choice flags must name a known option
func formFromFlags(cmd *cobra.Command) (configsync.Form, error) {
	f := cmd.Flags()
	form := configsync.DefaultForm()
	form.Role, _ = f.GetString("role")
	form.Task, _ = f.GetString("task")
	form.Example, _ = f.GetString("example")
	form.CustomExample, _ = f.GetString("custom-example")
	form.Reasoning, _ = f.GetString("reasoning")
	form.RAGContext, _ = f.GetString("rag-context")
	form.OutputFormat, _ = f.GetString("output-format")
	form.PromptFormat, _ = f.GetString("prompt-format")

	if form.CustomExample != "" {
		form.Example = configsync.ExampleCustom
	}
	if form.RAGContext != "" {
		form.ExternalSource = configsync.ExternalSourceOn
	}

	choices := []struct {
		flag    string
		value   string
		options []string
	}{
		{"example", form.Example, configsync.ExampleOptions},
		{"reasoning", form.Reasoning, configsync.ReasoningOptions},
		{"prompt-format", form.PromptFormat, configsync.PromptFormatOptions},
	}
	for _, c := range choices {
		if !contains(c.options, c.value) {
			return form, backend.NewValidationError("--%s must be one of %q", c.flag, c.options)
		}
	}
	return form, form.Validate()
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
