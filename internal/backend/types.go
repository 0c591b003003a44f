// Package backend is the HTTP client for the prompt-generation backend.
package backend

import (
	"fmt"

	"promptforge/internal/providers"
)

// SavedConfig is a backend-owned (provider, model, credential) triple.
type SavedConfig struct {
	ID         int64            `json:"id"`
	Provider   providers.Choice `json:"llm_type"`
	Model      string           `json:"model"`
	Credential string           `json:"api_key,omitempty"`
}

// Label renders the configuration the way the picker lists it
func (c SavedConfig) Label() string {
	return fmt.Sprintf("%s: %s", c.Provider, c.Model)
}

// SavedPrompt is a generated prompt persisted by the backend.
type SavedPrompt struct {
	ID   int64  `json:"id"`
	Text string `json:"prompt"`
}

// ModelList is the backend's answer to a model listing.
type ModelList struct {
	Models  []string
	Message string
	Status  Status
}

// SaveConfigRequest carries a configuration to persist.
type SaveConfigRequest struct {
	Provider   providers.Choice
	Model      string
	Credential string
}

// Matches reports whether cfg stores the same triple as the request.
func (r SaveConfigRequest) Matches(cfg SavedConfig) bool {
	return cfg.Provider == r.Provider &&
		cfg.Model == r.Model &&
		providers.EffectiveCredential(cfg.Provider, cfg.Credential) == providers.EffectiveCredential(r.Provider, r.Credential)
}

// GenerateRequest is the full form payload sent to /generate.
type GenerateRequest struct {
	Role           string
	Task           string
	Example        string
	Reasoning      string
	ExternalSource string
	OutputFormat   string
	PromptFormat   string
	RAGContext     string
	Provider       providers.Choice
	Credential     string
	Model          string
}
