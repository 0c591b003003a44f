package tui

import (
	"time"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
)

// ConfigsLoadedMsg is sent when the saved configurations are loaded.
// Generation identifies the load that produced it.
type ConfigsLoadedMsg struct {
	Generation uint64
	Configs    []backend.SavedConfig
	Err        error
}

// ModelsLoadedMsg carries the result of a model refresh and the ticket that
// started it, so stale results can be told apart
type ModelsLoadedMsg struct {
	Ticket configsync.RefreshTicket
	Result configsync.ModelsResult
}

// TestFinishedMsg is sent when a connection test completes
type TestFinishedMsg struct {
	Ticket configsync.TestTicket
	Result configsync.TestResult
}

// GenerationFinishedMsg is sent when a generation completes or times out
type GenerationFinishedMsg struct {
	Ticket configsync.GenerationTicket
	Result configsync.GenerationResult
}

// ConfigSavedMsg is sent when a configuration is saved
type ConfigSavedMsg struct {
	Request backend.SaveConfigRequest
	Message string
	Err     error
}

// ConfigDeletedMsg is sent when a configuration is deleted
type ConfigDeletedMsg struct {
	ID      int64
	Message string
	Err     error
}

// PromptsLoadedMsg is sent when the saved prompts are loaded
type PromptsLoadedMsg struct {
	Prompts []backend.SavedPrompt
	Err     error
}

// PromptSavedMsg is sent when the generated prompt is saved
type PromptSavedMsg struct {
	Message string
	Err     error
}

// PromptDeletedMsg is sent when a saved prompt is deleted
type PromptDeletedMsg struct {
	ID      int64
	Message string
	Err     error
}

// SettingsReloadedMsg carries a backend rebuilt after the settings file changed
type SettingsReloadedMsg struct {
	Backend        Backend
	Runner         *configsync.Runner
	RequestTimeout time.Duration
	Err            error
}
