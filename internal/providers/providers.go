package providers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Choice identifies an LLM provider on the wire ("llmOption" / "llm_type").
type Choice string

const (
	Ollama Choice = "ollama" // local model runtime
	OpenAI Choice = "openai" // remote API, needs a credential
)

// Default is the provider a fresh manual configuration starts with.
const Default = Ollama

// Provider defines the standard interface for LLM providers
type Provider interface {
	// Choice returns the wire identifier of the provider
	Choice() Choice
	// DisplayName returns a human readable name (e.g., "OpenAI")
	DisplayName() string
	// RequiresCredential reports whether requests need an API key
	RequiresCredential() bool
	// ValidateCredential validates the credential for this provider
	ValidateCredential(credential string) error
}

// registry stores all registered providers
var registry = make(map[Choice]Provider)

// Register registers a new provider
func Register(provider Provider) {
	registry[provider.Choice()] = provider
}

// Get returns a provider by choice
func Get(choice Choice) (Provider, error) {
	provider, ok := registry[choice]
	if !ok {
		return nil, errors.New("unknown provider: " + string(choice))
	}
	return provider, nil
}

// Parse resolves a user or wire supplied name into a registered Choice.
func Parse(name string) (Choice, error) {
	c := Choice(strings.ToLower(strings.TrimSpace(name)))
	if _, err := Get(c); err != nil {
		return "", err
	}
	return c, nil
}

// List returns all registered providers sorted by name
func List() []Choice {
	list := make([]Choice, 0, len(registry))
	for c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Next returns the registered provider following c, wrapping around.
func Next(c Choice) Choice {
	list := List()
	for i, candidate := range list {
		if candidate == c {
			return list[(i+1)%len(list)]
		}
	}
	return Default
}

// RequiresCredential reports whether c needs a credential. Unknown choices are
// treated as remote so that a missing key is never silently accepted.
func RequiresCredential(c Choice) bool {
	p, err := Get(c)
	if err != nil {
		return true
	}
	return p.RequiresCredential()
}

// EffectiveCredential drops the credential for providers that do not use one.
func EffectiveCredential(c Choice, credential string) string {
	if !RequiresCredential(c) {
		return ""
	}
	return strings.TrimSpace(credential)
}

// DisplayName returns the provider's display name, or the raw choice when unknown.
func DisplayName(c Choice) string {
	p, err := Get(c)
	if err != nil {
		return string(c)
	}
	return p.DisplayName()
}

// 内置提供商：Ollama
type OllamaProvider struct{}

func (p *OllamaProvider) Choice() Choice {
	return Ollama
}

func (p *OllamaProvider) DisplayName() string {
	return "Ollama"
}

func (p *OllamaProvider) RequiresCredential() bool {
	return false
}

func (p *OllamaProvider) ValidateCredential(credential string) error {
	return nil
}

// 内置提供商：OpenAI
type OpenAIProvider struct{}

func (p *OpenAIProvider) Choice() Choice {
	return OpenAI
}

func (p *OpenAIProvider) DisplayName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) RequiresCredential() bool {
	return true
}

func (p *OpenAIProvider) ValidateCredential(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("openai: must provide API key")
	}
	return nil
}

// 初始化：注册内置提供商
func init() {
	Register(&OllamaProvider{})
	Register(&OpenAIProvider{})
}
