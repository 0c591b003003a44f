package tui

import (
	"fmt"
	"strings"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
	"promptforge/internal/providers"
	"promptforge/internal/utils"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	activeSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Background(lipgloss.Color("57")).
				Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// Detail styles
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(12)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	detailTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Background(lipgloss.Color("22")).
			Bold(true).
			Padding(0, 1)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	detailMaskedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// RenderMainView renders the configuration panel, prompt summary and output
func (m Model) RenderMainView() string {
	var b strings.Builder
	st := m.sync.Snapshot()
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("promptforge"))
	b.WriteString("  ")
	b.WriteString(detailTagStyle.Render(modeLabel(st)))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n\n")

	// Configuration
	b.WriteString(detailSectionStyle.Render("Configuration"))
	b.WriteString("\n")
	b.WriteString(m.detailLine("Provider:", providers.DisplayName(st.Provider)))

	b.WriteString(detailLabelStyle.Render("API Key:"))
	switch {
	case !providers.RequiresCredential(st.Provider):
		b.WriteString(dimStyle.Render("(not used)"))
	case st.Credential == "":
		b.WriteString(warningStyle.Render("(not set)"))
	default:
		b.WriteString(detailMaskedStyle.Render(utils.MaskAPIKey(st.Credential)))
	}
	b.WriteString("\n")

	b.WriteString(detailLabelStyle.Render("Model:"))
	if st.Model != "" {
		b.WriteString(detailValueStyle.Render(utils.Truncate(st.Model, width-14)))
	} else {
		b.WriteString(dimStyle.Render("(none)"))
	}
	b.WriteString("\n")

	b.WriteString(detailLabelStyle.Render("Models:"))
	b.WriteString(m.modelsStatus(st))
	b.WriteString("\n")

	b.WriteString(detailLabelStyle.Render("Connection:"))
	b.WriteString(m.testStatus(st))
	b.WriteString("\n\n")

	// Prompt parameters
	b.WriteString(detailSectionStyle.Render("Prompt"))
	b.WriteString("\n")
	b.WriteString(m.detailLine("Role:", orNone(m.form.Role)))
	b.WriteString(m.detailLine("Task:", orNone(utils.FirstLine(m.form.Task))))
	b.WriteString(m.detailLine("Format:", m.form.PromptFormat+" / "+orDefault(m.form.OutputFormat, configsync.DefaultOutputFormat)))
	b.WriteString("\n")

	// Output
	b.WriteString(detailSectionStyle.Render("Output"))
	b.WriteString("\n")
	switch {
	case st.Generating:
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(fmt.Sprintf(" Generating with %s, this can take up to %s...", st.Model, m.runner.GenerateTimeout())))
		b.WriteString("\n")
	case st.GenerateError != "":
		b.WriteString(errorStyle.Render(st.GenerateError))
		b.WriteString("\n")
	case st.Output == "" && m.output.TotalLineCount() <= 1:
		b.WriteString(dimStyle.Render("Nothing generated yet, press 'e' to fill in the prompt and 'g' to generate"))
		b.WriteString("\n")
	default:
		b.WriteString(m.output.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())

	return b.String()
}

func (m Model) detailLine(label, value string) string {
	return detailLabelStyle.Render(label) + detailValueStyle.Render(utils.Truncate(value, m.getEffectiveWidth(60)-14)) + "\n"
}

func modeLabel(st configsync.State) string {
	switch st.Mode() {
	case configsync.ModeConfigSelected:
		if cfg, ok := st.SelectedConfig(); ok {
			return fmt.Sprintf("config #%d", cfg.ID)
		}
		return "saved config"
	case configsync.ModeNoConfig:
		return "no saved configs"
	default:
		return "manual"
	}
}

// modelsStatus renders the model list phase
func (m Model) modelsStatus(st configsync.State) string {
	switch st.ModelsPhase() {
	case configsync.ModelsLoading:
		return m.spinner.View() + dimStyle.Render(" loading...")
	case configsync.ModelsLoaded:
		return detailValueStyle.Render(fmt.Sprintf("%d available", len(st.AvailableModels)))
	case configsync.ModelsFailed:
		return errorStyle.Render("unavailable")
	default:
		if providers.RequiresCredential(st.Provider) && st.Credential == "" {
			return warningStyle.Render("enter an API key to list models")
		}
		return dimStyle.Render("(not loaded)")
	}
}

// testStatus renders the last connection test outcome
func (m Model) testStatus(st configsync.State) string {
	if st.Testing {
		return m.spinner.View() + dimStyle.Render(" testing...")
	}
	if st.LastTest.IsZero() {
		return dimStyle.Render("(not tested)")
	}
	switch st.LastTest.Status {
	case backend.StatusSuccess:
		return messageStyle.Render("✓ " + st.LastTest.Message)
	case backend.StatusFailure:
		return errorStyle.Render("✗ " + st.LastTest.Message)
	default:
		return warningStyle.Render(st.LastTest.Message)
	}
}

// getEffectiveWidth returns the effective width for rendering, with a minimum and maximum
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	maxWidth := 100
	if m.width < maxWidth {
		return m.width - 2
	}
	return maxWidth
}

// outputHeight leaves room for the configuration and prompt panels
func (m Model) outputHeight() int {
	h := m.height - 22
	if h < 3 {
		return 3
	}
	return h
}

func (m Model) separator(width int) string {
	return separatorStyle.Render(strings.Repeat("─", width))
}

// RenderConfigPicker renders the saved configuration list. Row 0 is manual entry.
func (m Model) RenderConfigPicker() string {
	var b strings.Builder
	st := m.sync.Snapshot()
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("Configurations"))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n\n")

	b.WriteString(m.renderPickerLine(0, "Manual entry", !st.Selected))
	b.WriteString("\n")
	if len(st.Configs) == 0 {
		b.WriteString(dimStyle.Render("    No saved configurations, press 'S' on the main screen to save one"))
		b.WriteString("\n")
	}
	for i, cfg := range st.Configs {
		label := cfg.Label()
		if providers.RequiresCredential(cfg.Provider) {
			label += " " + utils.MaskAPIKey(cfg.Credential)
		}
		active := st.Selected && cfg.ID == st.SelectedID
		b.WriteString(m.renderPickerLine(i+1, utils.Truncate(label, width-6), active))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k: move │ Enter: use │ d: delete │ r: reload │ Esc: back"))

	return b.String()
}

// renderPickerLine renders a single list row with cursor and active markers
func (m Model) renderPickerLine(index int, label string, active bool) string {
	selected := index == m.cursor

	cursor := "  "
	if selected {
		cursor = "> "
	}
	marker := "  "
	if active {
		marker = "* "
	}
	content := cursor + marker + label

	switch {
	case selected && active:
		return activeSelectedStyle.Render(content)
	case selected:
		return selectedStyle.Render(content)
	case active:
		return activeStyle.Render(content)
	}
	return normalStyle.Render(content)
}

// RenderModelPicker renders the available model list
func (m Model) RenderModelPicker() string {
	var b strings.Builder
	st := m.sync.Snapshot()
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("Select model"))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Provider: " + providers.DisplayName(st.Provider)))
	b.WriteString("\n\n")

	for i, name := range st.AvailableModels {
		selected := i == m.modelCursor
		active := name == st.Model
		cursor := "  "
		if selected {
			cursor = "> "
		}
		marker := "  "
		if active {
			marker = "* "
		}
		content := cursor + marker + utils.Truncate(name, width-6)
		switch {
		case selected && active:
			b.WriteString(activeSelectedStyle.Render(content))
		case selected:
			b.WriteString(selectedStyle.Render(content))
		case active:
			b.WriteString(activeStyle.Render(content))
		default:
			b.WriteString(normalStyle.Render(content))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: move │ Enter: select │ Esc: cancel"))

	return b.String()
}

// RenderCredentialView renders the API key prompt
func (m Model) RenderCredentialView() string {
	var b strings.Builder
	st := m.sync.Snapshot()

	b.WriteString(titleStyle.Render(providers.DisplayName(st.Provider) + " API key"))
	b.WriteString("\n\n")
	b.WriteString(formFocusedStyle.Render("API Key:"))
	b.WriteString(" ")
	b.WriteString(m.credentialInput.View())
	b.WriteString("\n")
	if !providers.RequiresCredential(st.Provider) {
		b.WriteString(formHintStyle.Render("  " + providers.DisplayName(st.Provider) + " does not use an API key"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: apply │ Esc: cancel"))

	return b.String()
}

// RenderPromptsView renders the saved prompt list
func (m Model) RenderPromptsView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("Saved prompts"))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n\n")

	if len(m.prompts) == 0 {
		b.WriteString(dimStyle.Render("No saved prompts"))
		b.WriteString("\n")
	}
	for i, p := range m.prompts {
		label := fmt.Sprintf("#%d %s", p.ID, utils.FirstLine(p.Text))
		b.WriteString(m.renderPickerLine(i, utils.Truncate(label, width-6), false))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k: move │ Enter: show │ d: delete │ r: reload │ Esc: back"))

	return b.String()
}

// RenderDeleteConfirm renders the delete confirmation dialog
func (m Model) RenderDeleteConfirm() string {
	var b strings.Builder
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("Confirm delete"))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n\n")

	b.WriteString(errorStyle.Render("⚠ This cannot be undone"))
	b.WriteString("\n\n")

	what := "configuration"
	if m.pendingDel.prompt {
		what = "prompt"
	}
	b.WriteString(normalStyle.Render(fmt.Sprintf("Delete %s #%d: ", what, m.pendingDel.id)))
	b.WriteString(selectedStyle.Render(m.pendingDel.label))
	b.WriteString("\n\n")

	st := m.sync.Snapshot()
	if !m.pendingDel.prompt && st.Selected && st.SelectedID == m.pendingDel.id {
		b.WriteString(errorStyle.Render("This configuration is in use, deleting it switches to manual entry"))
		b.WriteString("\n\n")
	}

	b.WriteString(m.separator(width))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("y: delete │ n/Esc: cancel"))

	return b.String()
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(60)

	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")

	sections := []string{"Prompt", "Configuration", "Models", "Navigation", "General"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString("\n")
		if i < len(sections) {
			b.WriteString(detailSectionStyle.Render(sections[i]))
			b.WriteString("\n")
		}
		for _, k := range group {
			b.WriteString(renderHelpLine(k.Help().Key, k.Help().Desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.separator(width))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q/Esc: back"))

	return b.String()
}

// renderHelpLine renders a single help line with key and description
func renderHelpLine(key, desc string) string {
	keyStyled := helpKeyStyle.Render(fmt.Sprintf("  %-10s", key))
	descStyled := normalStyle.Render(desc)
	return fmt.Sprintf("%s %s\n", keyStyled, descStyled)
}

// RenderStatusBar renders the bottom status bar
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ Error: " + m.errorMsg))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}
	if m.errorMsg != "" || m.message != "" {
		b.WriteString("\n")
	}

	shortHelp := m.keys.ShortHelp()
	hints := make([]string, 0, len(shortHelp))
	for _, k := range shortHelp {
		keyStr := helpKeyStyle.Render(k.Help().Key)
		descStr := helpStyle.Render(k.Help().Desc)
		hints = append(hints, fmt.Sprintf("%s %s", keyStr, descStr))
	}
	b.WriteString(strings.Join(hints, helpStyle.Render(" │ ")))

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
