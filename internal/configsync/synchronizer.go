package configsync

import (
	"errors"
	"fmt"

	"promptforge/internal/backend"
	"promptforge/internal/providers"
)

var (
	ErrConfigurationLocked = errors.New("a saved configuration is selected; switch to manual entry to edit it")
	ErrModelsLoading       = errors.New("models are still loading")
	ErrUnknownModel        = errors.New("model is not in the available list")
	ErrGenerating          = errors.New("a generation is already running")
)

// RefreshTicket describes a model-list fetch to run.
type RefreshTicket struct {
	Generation uint64
	Provider   providers.Choice
	Credential string
}

// TestTicket describes a connection test to run.
type TestTicket struct {
	Generation uint64
	Provider   providers.Choice
	Credential string
}

// GenerationTicket describes a generation request to run.
type GenerationTicket struct {
	Generation uint64
	Request    backend.GenerateRequest
}

// ModelsResult is the outcome of a RefreshTicket
type ModelsResult struct {
	Models []string
	Err    error
}

// GenerationResult is the outcome of a GenerationTicket
type GenerationResult struct {
	Output string
	Err    error
}

// Synchronizer owns the configuration state. It is not safe for concurrent
// use; callers serialize every call (the TUI does so through its update loop).
type Synchronizer struct {
	state State

	modelsGen uint64
	testGen   uint64
	genGen    uint64

	configsLoaded bool
	manualChosen  bool
}

// New returns a synchronizer in manual entry for the default provider.
func New() *Synchronizer {
	return &Synchronizer{
		state: State{
			Manual:   true,
			Provider: providers.Default,
		},
	}
}

// Snapshot returns a copy of the current state
func (s *Synchronizer) Snapshot() State {
	return s.state.clone()
}

// SelectSavedConfiguration binds the state to a cached configuration, copying
// its provider, model and credential in one step. Unknown ids are ignored.
func (s *Synchronizer) SelectSavedConfiguration(id int64) (RefreshTicket, bool) {
	cfg, ok := s.state.Config(id)
	if !ok {
		return RefreshTicket{}, false
	}

	s.state.Selected = true
	s.state.SelectedID = cfg.ID
	s.state.Manual = false
	s.state.Provider = cfg.Provider
	s.state.Model = cfg.Model
	s.state.Credential = cfg.Credential
	s.clearTest()

	return s.RefreshAvailableModels(cfg.Provider, cfg.Credential), true
}

// SwitchToManualConfiguration leaves any saved configuration and clears the
// credential and model so nothing fetched under the old credential survives.
func (s *Synchronizer) SwitchToManualConfiguration() RefreshTicket {
	s.manualChosen = true
	s.state.Selected = false
	s.state.SelectedID = 0
	s.state.Manual = true
	s.state.Credential = ""
	s.state.Model = ""
	s.clearTest()

	return s.RefreshAvailableModels(s.state.Provider, "")
}

// RefreshAvailableModels starts a model-list fetch. Any fetch started earlier
// becomes stale.
func (s *Synchronizer) RefreshAvailableModels(provider providers.Choice, credential string) RefreshTicket {
	s.modelsGen++
	s.state.LoadingModels = true
	s.state.phase = ModelsLoading
	return RefreshTicket{
		Generation: s.modelsGen,
		Provider:   provider,
		Credential: providers.EffectiveCredential(provider, credential),
	}
}

// ApplyModels applies the result of a fetch. Results of stale tickets are
// discarded and false is returned.
func (s *Synchronizer) ApplyModels(t RefreshTicket, res ModelsResult) bool {
	if t.Generation != s.modelsGen {
		return false
	}
	s.state.LoadingModels = false

	if res.Err != nil {
		s.state.AvailableModels = []string{}
		s.state.Model = ""
		s.state.phase = ModelsFailed
		s.state.LastTest = failure(backend.UserMessage(res.Err))
		return true
	}

	s.state.AvailableModels = append([]string{}, res.Models...)
	s.state.phase = ModelsLoaded
	s.state.LastTest = TestResult{
		Status:  backend.StatusSuccess,
		Message: providers.DisplayName(t.Provider) + " models loaded successfully",
	}
	if s.state.Model != "" && !s.state.HasModel(s.state.Model) {
		s.state.Model = ""
	}
	return true
}

// TestConnection starts a connection test for the current provider and
// credential. A remote provider without a credential fails locally.
func (s *Synchronizer) TestConnection() (TestTicket, error) {
	provider := s.state.Provider
	credential := s.state.EffectiveCredential()
	if providers.RequiresCredential(provider) && credential == "" {
		err := backend.NewValidationError("%s requires an API key", providers.DisplayName(provider))
		s.state.LastTest = failure(err.UserMessage())
		return TestTicket{}, err
	}

	s.testGen++
	s.state.Testing = true
	return TestTicket{Generation: s.testGen, Provider: provider, Credential: credential}, nil
}

// ApplyTest records a test result. A passed test starts a model refresh and
// returns its ticket. A failed test leaves the model list untouched.
func (s *Synchronizer) ApplyTest(t TestTicket, res TestResult) (RefreshTicket, bool) {
	if t.Generation != s.testGen {
		return RefreshTicket{}, false
	}
	s.state.Testing = false
	s.state.LastTest = res
	if !res.Succeeded() {
		return RefreshTicket{}, false
	}
	return s.RefreshAvailableModels(s.state.Provider, s.state.Credential), true
}

// PrepareGeneration validates the form against the effective configuration
// and marks the state as generating. Nothing is sent when it fails.
func (s *Synchronizer) PrepareGeneration(form Form) (GenerationTicket, error) {
	if s.state.Generating {
		return GenerationTicket{}, ErrGenerating
	}

	provider, model, credential := s.state.Provider, s.state.Model, s.state.Credential
	if cfg, ok := s.state.SelectedConfig(); ok {
		provider, model, credential = cfg.Provider, cfg.Model, cfg.Credential
	}

	err := form.Validate()
	if err == nil {
		err = validateConfiguration(provider, model, credential)
	}
	if err != nil {
		s.state.Output = ""
		s.state.GenerateError = backend.UserMessage(err)
		return GenerationTicket{}, err
	}

	s.genGen++
	s.state.Generating = true
	s.state.Output = ""
	s.state.GenerateError = ""
	return GenerationTicket{
		Generation: s.genGen,
		Request:    form.Request(provider, model, credential),
	}, nil
}

// FinishGeneration stores the outcome of a generation and clears Generating.
func (s *Synchronizer) FinishGeneration(t GenerationTicket, res GenerationResult) bool {
	if t.Generation != s.genGen {
		return false
	}
	s.state.Generating = false
	if res.Err != nil {
		s.state.Output = ""
		s.state.GenerateError = backend.UserMessage(res.Err)
		return true
	}
	s.state.Output = res.Output
	s.state.GenerateError = ""
	return true
}

// ApplyConfigurations replaces the cached configuration list. The first list
// seeds the selection unless the user already chose manual entry; a selection
// whose configuration disappeared falls back to manual entry, and one the
// backend changed under the same id is copied again.
func (s *Synchronizer) ApplyConfigurations(configs []backend.SavedConfig) (RefreshTicket, bool) {
	first := !s.configsLoaded
	s.configsLoaded = true
	previous, _ := s.state.SelectedConfig()
	s.state.Configs = append([]backend.SavedConfig{}, configs...)

	if s.state.Selected {
		cfg, ok := s.state.Config(s.state.SelectedID)
		if !ok {
			return s.SwitchToManualConfiguration(), true
		}
		if cfg != previous {
			return s.SelectSavedConfiguration(cfg.ID)
		}
		return RefreshTicket{}, false
	}
	if first && !s.manualChosen && len(configs) > 0 {
		return s.SelectSavedConfiguration(configs[0].ID)
	}
	return RefreshTicket{}, false
}

// ConfigurationDeleted drops a configuration from the cache. Deleting the
// selected one returns to manual entry.
func (s *Synchronizer) ConfigurationDeleted(id int64) (RefreshTicket, bool) {
	kept := s.state.Configs[:0:0]
	for _, cfg := range s.state.Configs {
		if cfg.ID != id {
			kept = append(kept, cfg)
		}
	}
	s.state.Configs = kept

	if s.state.Selected && s.state.SelectedID == id {
		return s.SwitchToManualConfiguration(), true
	}
	return RefreshTicket{}, false
}

// SetProvider changes the manual provider.
func (s *Synchronizer) SetProvider(choice providers.Choice) (RefreshTicket, bool, error) {
	if s.state.Selected {
		return RefreshTicket{}, false, ErrConfigurationLocked
	}
	if _, err := providers.Get(choice); err != nil {
		return RefreshTicket{}, false, backend.NewValidationError("%v", err)
	}
	s.manualChosen = true
	s.state.Provider = choice
	s.clearTest()
	t, ok := s.refreshIfUsable()
	return t, ok, nil
}

// SetCredential changes the manual credential.
func (s *Synchronizer) SetCredential(credential string) (RefreshTicket, bool, error) {
	if s.state.Selected {
		return RefreshTicket{}, false, ErrConfigurationLocked
	}
	s.manualChosen = true
	s.state.Credential = credential
	s.clearTest()
	t, ok := s.refreshIfUsable()
	return t, ok, nil
}

// SelectModel picks a model from the available list in manual entry.
func (s *Synchronizer) SelectModel(name string) error {
	if s.state.Selected {
		return ErrConfigurationLocked
	}
	if s.state.LoadingModels {
		return ErrModelsLoading
	}
	if !s.state.HasModel(name) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	s.state.Model = name
	return nil
}

// PrepareSave returns the request that persists the manual configuration.
func (s *Synchronizer) PrepareSave() (backend.SaveConfigRequest, error) {
	if err := validateConfiguration(s.state.Provider, s.state.Model, s.state.Credential); err != nil {
		return backend.SaveConfigRequest{}, err
	}
	return backend.SaveConfigRequest{
		Provider:   s.state.Provider,
		Model:      s.state.Model,
		Credential: s.state.EffectiveCredential(),
	}, nil
}

// AdoptSaved selects the newest cached configuration matching a saved request.
// Call it after the configuration list has been reloaded.
func (s *Synchronizer) AdoptSaved(req backend.SaveConfigRequest) (RefreshTicket, bool) {
	var (
		best  int64
		found bool
	)
	for _, cfg := range s.state.Configs {
		if req.Matches(cfg) && (!found || cfg.ID > best) {
			best, found = cfg.ID, true
		}
	}
	if !found {
		return RefreshTicket{}, false
	}
	return s.SelectSavedConfiguration(best)
}

// refreshIfUsable starts a refresh when the manual pair can list models. A
// remote provider without a credential cannot, so its list is cleared instead.
func (s *Synchronizer) refreshIfUsable() (RefreshTicket, bool) {
	if !providers.RequiresCredential(s.state.Provider) || s.state.EffectiveCredential() != "" {
		return s.RefreshAvailableModels(s.state.Provider, s.state.Credential), true
	}
	s.modelsGen++
	s.state.LoadingModels = false
	s.state.phase = ModelsIdle
	s.state.AvailableModels = []string{}
	s.state.Model = ""
	return RefreshTicket{}, false
}

// clearTest forgets the last result and orphans any test in flight
func (s *Synchronizer) clearTest() {
	s.testGen++
	s.state.Testing = false
	s.state.LastTest = TestResult{}
}

func validateConfiguration(provider providers.Choice, model, credential string) error {
	p, err := providers.Get(provider)
	if err != nil {
		return backend.NewValidationError("%v", err)
	}
	if err := p.ValidateCredential(credential); err != nil {
		return backend.NewValidationError("%v", err)
	}
	if model == "" {
		return backend.NewValidationError("no model selected")
	}
	return nil
}
