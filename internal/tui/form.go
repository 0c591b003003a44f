package tui

import (
	"strings"

	"promptforge/internal/configsync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// FormField represents the index of each form field
const (
	FormFieldRole = iota
	FormFieldTask
	FormFieldExample
	FormFieldCustomExample
	FormFieldReasoning
	FormFieldExternalSource
	FormFieldRAGContext
	FormFieldOutputFormat
	FormFieldPromptFormat
	FormFieldCount // Total number of fields
)

// choiceOptions holds the option list of every field picked from a fixed set
var choiceOptions = map[int][]string{
	FormFieldExample:        configsync.ExampleOptions,
	FormFieldReasoning:      configsync.ReasoningOptions,
	FormFieldExternalSource: configsync.ExternalSourceOptions,
	FormFieldPromptFormat:   configsync.PromptFormatOptions,
}

// IsChoiceField reports whether field cycles through fixed options
func IsChoiceField(field int) bool {
	_, ok := choiceOptions[field]
	return ok
}

// Form styles
var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	formFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(18)

	formChoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	formErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	formHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// FormInputs creates the form inputs, pre-filled from f
func FormInputs(f configsync.Form) []textinput.Model {
	inputs := make([]textinput.Model, FormFieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Prompt = ""
		inputs[i].Width = 50
		inputs[i].CharLimit = 256
	}

	inputs[FormFieldRole].Placeholder = "e.g. experienced math teacher"
	inputs[FormFieldTask].Placeholder = "what the prompt should make the model do"
	inputs[FormFieldTask].CharLimit = 2000
	inputs[FormFieldCustomExample].Placeholder = "example input and output"
	inputs[FormFieldCustomExample].CharLimit = 2000
	inputs[FormFieldRAGContext].Placeholder = "documents or facts to ground the answer"
	inputs[FormFieldRAGContext].CharLimit = 8000
	inputs[FormFieldOutputFormat].Placeholder = configsync.DefaultOutputFormat

	SetFormData(inputs, f)
	inputs[FormFieldRole].Focus()
	return inputs
}

// GetFormData extracts the form from the inputs
func GetFormData(inputs []textinput.Model) configsync.Form {
	return configsync.Form{
		Role:           inputs[FormFieldRole].Value(),
		Task:           inputs[FormFieldTask].Value(),
		Example:        inputs[FormFieldExample].Value(),
		CustomExample:  inputs[FormFieldCustomExample].Value(),
		Reasoning:      inputs[FormFieldReasoning].Value(),
		ExternalSource: inputs[FormFieldExternalSource].Value(),
		RAGContext:     inputs[FormFieldRAGContext].Value(),
		OutputFormat:   inputs[FormFieldOutputFormat].Value(),
		PromptFormat:   inputs[FormFieldPromptFormat].Value(),
	}
}

// SetFormData populates the inputs from f
func SetFormData(inputs []textinput.Model, f configsync.Form) {
	inputs[FormFieldRole].SetValue(f.Role)
	inputs[FormFieldTask].SetValue(f.Task)
	inputs[FormFieldExample].SetValue(orFirst(f.Example, configsync.ExampleOptions))
	inputs[FormFieldCustomExample].SetValue(f.CustomExample)
	inputs[FormFieldReasoning].SetValue(orFirst(f.Reasoning, configsync.ReasoningOptions))
	inputs[FormFieldExternalSource].SetValue(orFirst(f.ExternalSource, configsync.ExternalSourceOptions))
	inputs[FormFieldRAGContext].SetValue(f.RAGContext)
	inputs[FormFieldOutputFormat].SetValue(f.OutputFormat)
	inputs[FormFieldPromptFormat].SetValue(orFirst(f.PromptFormat, configsync.PromptFormatOptions))
}

func orFirst(value string, options []string) string {
	if value == "" {
		return options[0]
	}
	return value
}

// CycleChoice advances a choice field to its next option
func CycleChoice(inputs []textinput.Model, field int) {
	options, ok := choiceOptions[field]
	if !ok {
		return
	}
	inputs[field].SetValue(configsync.Cycle(options, inputs[field].Value()))
}

// FormLabels returns the labels for each form field
func FormLabels() []string {
	return []string{
		"Role:",
		"Task:",
		"Example:",
		"Custom example:",
		"Reasoning:",
		"External source:",
		"RAG context:",
		"Output format:",
		"Prompt format:",
	}
}

// FormHints returns the hint text for each form field
func FormHints() []string {
	return []string{
		"who the model should act as",
		"the job the generated prompt describes",
		"Space/←/→ to change",
		"used when Example is \"custom example\"",
		"Space/←/→ to change",
		"Space/←/→ to change",
		"used when External source is \"yes\"",
		"text, json, markdown, ...",
		"Space/←/→ to change",
	}
}

// fieldVisible hides the custom example and RAG context unless their switch is on
func fieldVisible(inputs []textinput.Model, field int) bool {
	switch field {
	case FormFieldCustomExample:
		return inputs[FormFieldExample].Value() == configsync.ExampleCustom
	case FormFieldRAGContext:
		return inputs[FormFieldExternalSource].Value() == configsync.ExternalSourceOn
	}
	return true
}

// RenderForm renders the form view with inputs
func RenderForm(inputs []textinput.Model, focusIndex int, title string, errorMsg string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)))
	b.WriteString("\n\n")

	labels := FormLabels()
	hints := FormHints()

	for i, input := range inputs {
		if !fieldVisible(inputs, i) {
			continue
		}
		if i == focusIndex {
			b.WriteString(formFocusedStyle.Render(labels[i]))
		} else {
			b.WriteString(formLabelStyle.Render(labels[i]))
		}
		b.WriteString(" ")

		if IsChoiceField(i) {
			b.WriteString(formChoiceStyle.Render("‹ " + input.Value() + " ›"))
		} else {
			b.WriteString(input.View())
		}
		b.WriteString("\n")

		// Hint (only show for focused field)
		if i == focusIndex {
			b.WriteString(formLabelStyle.Render(""))
			b.WriteString(" ")
			b.WriteString(formHintStyle.Render(hints[i]))
			b.WriteString("\n")
		}
	}

	if errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(formErrorStyle.Render("✗ " + errorMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Tab/↓: next │ Shift+Tab/↑: previous │ Enter: done │ Esc: discard"))

	return b.String()
}

// NextFormField moves focus to the next visible form field
func NextFormField(inputs []textinput.Model, currentFocus int) int {
	return moveFocus(inputs, currentFocus, 1)
}

// PrevFormField moves focus to the previous visible form field
func PrevFormField(inputs []textinput.Model, currentFocus int) int {
	return moveFocus(inputs, currentFocus, -1)
}

func moveFocus(inputs []textinput.Model, currentFocus, step int) int {
	inputs[currentFocus].Blur()
	next := currentFocus
	for range inputs {
		next = (next + step + len(inputs)) % len(inputs)
		if fieldVisible(inputs, next) {
			break
		}
	}
	if !IsChoiceField(next) {
		inputs[next].Focus()
	}
	return next
}
