package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up         key.Binding // k - move up / scroll
	Down       key.Binding // j - move down / scroll
	Select     key.Binding // Enter - select
	EditForm   key.Binding // e - edit prompt parameters
	Generate   key.Binding // g - generate prompt
	Configs    key.Binding // c - pick configuration
	Provider   key.Binding // p - cycle provider
	Credential key.Binding // a - enter API key
	Model      key.Binding // m - pick model
	Refresh    key.Binding // r - refresh models
	Test       key.Binding // t - test connection
	SaveConfig key.Binding // S - save configuration
	SavePrompt key.Binding // s - save generated prompt
	Prompts    key.Binding // l - saved prompts
	Delete     key.Binding // d - delete
	Help       key.Binding // ? - help
	Quit       key.Binding // q - quit
	Cancel     key.Binding // Esc - cancel
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "select"),
		),
		EditForm: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit prompt"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		Configs: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "configs"),
		),
		Provider: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "provider"),
		),
		Credential: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "API key"),
		),
		Model: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "model"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh models"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test"),
		),
		SaveConfig: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save config"),
		),
		SavePrompt: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save prompt"),
		),
		Prompts: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "saved prompts"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
	}
}

// ShortHelp returns short help text
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.EditForm, k.Generate, k.Configs, k.Model, k.Test, k.Help, k.Quit}
}

// FullHelp returns full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.EditForm, k.Generate, k.SavePrompt, k.Prompts},
		{k.Configs, k.Provider, k.Credential, k.Model},
		{k.Refresh, k.Test, k.SaveConfig, k.Delete},
		{k.Up, k.Down, k.Select, k.Cancel},
		{k.Help, k.Quit},
	}
}
