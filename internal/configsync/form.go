package configsync

import (
	"strings"

	"promptforge/internal/backend"
	"promptforge/internal/providers"
)

// Option values understood by the backend
const (
	ExampleCustom    = "custom example"
	ExternalSourceOn = "yes"
)

var (
	ExampleOptions        = []string{"no example", "single example", "multiple examples", ExampleCustom}
	ReasoningOptions      = []string{"no reasoning", "step-by-step thinking", "tree-style thinking", "list-style thinking"}
	ExternalSourceOptions = []string{"no", ExternalSourceOn}
	PromptFormatOptions   = []string{"instruction", "chat", "bullet", "context-question"}
)

// DefaultOutputFormat is the output format a fresh form starts with
const DefaultOutputFormat = "text"

// Form holds the prompt parameters the user assembles.
type Form struct {
	Role           string
	Task           string
	Example        string
	CustomExample  string
	Reasoning      string
	ExternalSource string
	RAGContext     string
	OutputFormat   string
	PromptFormat   string
}

// DefaultForm returns a form with every choice set to its first option
func DefaultForm() Form {
	return Form{
		Example:        ExampleOptions[0],
		Reasoning:      ReasoningOptions[0],
		ExternalSource: ExternalSourceOptions[0],
		OutputFormat:   DefaultOutputFormat,
		PromptFormat:   PromptFormatOptions[0],
	}
}

// Validate checks the fields the backend requires.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Role) == "" {
		return backend.NewValidationError("role is required")
	}
	if strings.TrimSpace(f.Task) == "" {
		return backend.NewValidationError("task is required")
	}
	if f.Example == ExampleCustom && strings.TrimSpace(f.CustomExample) == "" {
		return backend.NewValidationError("custom example is empty")
	}
	return nil
}

// ExampleValue is what is sent as "example": the custom text when the custom
// option is chosen, otherwise the option itself.
func (f Form) ExampleValue() string {
	if f.Example == ExampleCustom {
		return f.CustomExample
	}
	return f.Example
}

// Request builds the generation payload for an effective configuration.
func (f Form) Request(provider providers.Choice, model, credential string) backend.GenerateRequest {
	outputFormat := strings.TrimSpace(f.OutputFormat)
	if outputFormat == "" {
		outputFormat = DefaultOutputFormat
	}
	rag := ""
	if f.ExternalSource == ExternalSourceOn {
		rag = f.RAGContext
	}
	return backend.GenerateRequest{
		Role:           strings.TrimSpace(f.Role),
		Task:           strings.TrimSpace(f.Task),
		Example:        f.ExampleValue(),
		Reasoning:      f.Reasoning,
		ExternalSource: f.ExternalSource,
		OutputFormat:   outputFormat,
		PromptFormat:   f.PromptFormat,
		RAGContext:     rag,
		Provider:       provider,
		Credential:     providers.EffectiveCredential(provider, credential),
		Model:          model,
	}
}

// Cycle returns the option after current in options, wrapping around.
func Cycle(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
