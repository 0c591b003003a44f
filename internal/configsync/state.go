// Package configsync keeps the client's LLM configuration consistent with the
// backend's saved configurations and per-provider model lists.
//
// A Synchronizer owns the state and performs no I/O. Operations return tickets
// describing the asynchronous work to run; a Runner executes them and the
// results are handed back through the Apply methods. Results carry the
// generation of the ticket that produced them, so a response to an older
// trigger never overwrites a newer one.
package configsync

import (
	"promptforge/internal/backend"
	"promptforge/internal/providers"
)

// Mode is the configuration half of the state machine.
type Mode int

const (
	ModeNoConfig       Mode = iota // manual entry, no saved configurations known
	ModeConfigSelected             // bound to a saved configuration
	ModeManualEntry                // manual entry while saved configurations exist
)

func (m Mode) String() string {
	switch m {
	case ModeNoConfig:
		return "no-config"
	case ModeConfigSelected:
		return "config-selected"
	case ModeManualEntry:
		return "manual-entry"
	default:
		return "unknown"
	}
}

// ModelsPhase is the model-list half of the state machine.
type ModelsPhase int

const (
	ModelsIdle ModelsPhase = iota
	ModelsLoading
	ModelsLoaded
	ModelsFailed
)

func (p ModelsPhase) String() string {
	switch p {
	case ModelsIdle:
		return "idle"
	case ModelsLoading:
		return "loading"
	case ModelsLoaded:
		return "loaded"
	case ModelsFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TestResult is the outcome of the last connection test or model refresh.
type TestResult struct {
	Status  backend.Status
	Message string
}

// IsZero reports whether no result is recorded
func (r TestResult) IsZero() bool {
	return r.Status == backend.StatusUnknown && r.Message == ""
}

// Succeeded reports whether the result is tagged success
func (r TestResult) Succeeded() bool {
	return r.Status == backend.StatusSuccess
}

func failure(message string) TestResult {
	return TestResult{Status: backend.StatusFailure, Message: message}
}

// State is a point-in-time view of the synchronizer. Values returned by
// Synchronizer.Snapshot share nothing with the live state.
type State struct {
	Configs []backend.SavedConfig

	// Exactly one of Selected and Manual is true.
	Selected   bool
	SelectedID int64
	Manual     bool

	Provider        providers.Choice
	Credential      string
	Model           string
	AvailableModels []string
	LoadingModels   bool
	phase           ModelsPhase

	Testing  bool
	LastTest TestResult

	Generating    bool
	Output        string
	GenerateError string
}

// Mode reports which configuration state the synchronizer is in
func (s State) Mode() Mode {
	switch {
	case s.Selected:
		return ModeConfigSelected
	case len(s.Configs) == 0:
		return ModeNoConfig
	default:
		return ModeManualEntry
	}
}

// ModelsPhase reports the model-list state
func (s State) ModelsPhase() ModelsPhase {
	return s.phase
}

// Consistent reports whether exactly one of selection and manual entry holds.
func (s State) Consistent() bool {
	return s.Selected != s.Manual
}

// SelectedConfig returns the cached configuration the state is bound to.
func (s State) SelectedConfig() (backend.SavedConfig, bool) {
	if !s.Selected {
		return backend.SavedConfig{}, false
	}
	return s.Config(s.SelectedID)
}

// Config looks up a cached configuration by id
func (s State) Config(id int64) (backend.SavedConfig, bool) {
	for _, cfg := range s.Configs {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return backend.SavedConfig{}, false
}

// HasModel reports whether name is in the available list
func (s State) HasModel(name string) bool {
	for _, m := range s.AvailableModels {
		if m == name {
			return true
		}
	}
	return false
}

// EffectiveCredential is the credential requests are sent with.
func (s State) EffectiveCredential() string {
	return providers.EffectiveCredential(s.Provider, s.Credential)
}

func (s State) clone() State {
	out := s
	if s.Configs != nil {
		out.Configs = append([]backend.SavedConfig(nil), s.Configs...)
	}
	if s.AvailableModels != nil {
		out.AvailableModels = append([]string(nil), s.AvailableModels...)
	}
	return out
}
