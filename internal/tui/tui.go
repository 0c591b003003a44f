package tui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoTerminal is returned by Run when stdin is not a terminal
var ErrNoTerminal = errors.New("promptforge TUI requires a terminal. Use subcommands for non-interactive mode")

// Run starts the TUI interface
func Run(opts Options) error {
	if !IsTerminal() {
		return ErrNoTerminal
	}

	m := NewModel(opts)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// IsTerminal checks if stdin is a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
