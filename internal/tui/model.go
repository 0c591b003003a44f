// Package tui provides the terminal user interface for promptforge
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
	"promptforge/internal/providers"
	"promptforge/internal/utils"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewMain         ViewState = iota // Configuration, form summary and output
	ViewForm                          // Prompt parameter form
	ViewConfigPicker                  // Saved configurations plus manual entry
	ViewModelPicker                   // Available models
	ViewCredential                    // API key entry
	ViewPrompts                       // Saved prompts
	ViewDelete                        // Delete confirmation dialog
	ViewHelp                          // Help panel
)

// Backend is everything the TUI asks of the prompt backend
type Backend interface {
	configsync.Backend
	ListConfigs(ctx context.Context) ([]backend.SavedConfig, error)
	SaveConfig(ctx context.Context, req backend.SaveConfigRequest) (string, error)
	DeleteConfig(ctx context.Context, id int64) (string, error)
	ListPrompts(ctx context.Context) ([]backend.SavedPrompt, error)
	SavePrompt(ctx context.Context, prompt string) (string, error)
	DeletePrompt(ctx context.Context, id int64) (string, error)
}

// Options configures a Model
type Options struct {
	Backend        Backend
	Runner         *configsync.Runner // built from Backend when nil
	Logger         zerolog.Logger
	RequestTimeout time.Duration

	// Reloads delivers rebuilt backends when the settings change; optional
	Reloads <-chan SettingsReloadedMsg
}

// deleteTarget is what the delete confirmation dialog is about
type deleteTarget struct {
	prompt bool // false: configuration
	id     int64
	label  string
	from   ViewState
}

// Model is the TUI state. Update is the only place the synchronizer is
// mutated; commands perform I/O and report back through messages.
type Model struct {
	sync    *configsync.Synchronizer
	runner  *configsync.Runner
	backend Backend
	logger  zerolog.Logger
	timeout time.Duration
	reloads <-chan SettingsReloadedMsg

	viewState ViewState
	keys      KeyMap

	// Prompt parameters
	form       configsync.Form
	formInputs []textinput.Model
	formFocus  int

	credentialInput textinput.Model
	spinner         spinner.Model
	output          viewport.Model

	prompts     []backend.SavedPrompt
	cursor      int // config picker and prompt list cursor
	modelCursor int
	pendingDel  deleteTarget

	// Configuration awaiting selection once the list reloads
	pendingAdopt *backend.SaveConfigRequest
	// configsGen tags configuration list loads; only the latest is applied
	configsGen uint64

	// Messages and errors
	message  string
	errorMsg string

	// Window size
	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	runner := opts.Runner
	if runner == nil {
		runner = configsync.NewRunner(opts.Backend, configsync.WithRunnerLogger(opts.Logger))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = configsync.DefaultRequestTimeout
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	return Model{
		sync:      configsync.New(),
		runner:    runner,
		backend:   opts.Backend,
		logger:    opts.Logger,
		timeout:   timeout,
		reloads:   opts.Reloads,
		viewState: ViewMain,
		keys:      DefaultKeyMap(),
		form:      configsync.DefaultForm(),
		spinner:   sp,
		output:    viewport.New(80, 8),
		width:     80,
		height:    24,

		configsGen: 1,
	}
}

// Snapshot exposes the synchronizer state for rendering and tests
func (m Model) Snapshot() configsync.State {
	return m.sync.Snapshot()
}

// Init loads the saved configurations and the default provider's models
func (m Model) Init() tea.Cmd {
	st := m.sync.Snapshot()
	refresh := m.sync.RefreshAvailableModels(st.Provider, st.Credential)
	return tea.Batch(
		loadConfigs(m.backend, m.timeout, m.configsGen),
		m.fetchModels(refresh),
		m.spinner.Tick,
		waitForReload(m.reloads),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = m.getEffectiveWidth(60)
		m.output.Height = m.outputHeight()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigsLoadedMsg:
		if msg.Generation != m.configsGen {
			m.logger.Debug().Uint64("generation", msg.Generation).Msg("discarded stale configuration list")
			return m, nil
		}
		if msg.Err != nil {
			m.errorMsg = "Failed to load configurations: " + backend.UserMessage(msg.Err)
			return m, nil
		}
		t, ok := m.sync.ApplyConfigurations(msg.Configs)
		if m.pendingAdopt != nil {
			if adopted, found := m.sync.AdoptSaved(*m.pendingAdopt); found {
				t, ok = adopted, true
			}
			m.pendingAdopt = nil
		}
		m.clampCursor(len(msg.Configs) + 1)
		return m, m.refreshCmd(t, ok)

	case ModelsLoadedMsg:
		if !m.sync.ApplyModels(msg.Ticket, msg.Result) {
			m.logger.Debug().Uint64("generation", msg.Ticket.Generation).Msg("discarded stale model list")
		}
		return m, nil

	case TestFinishedMsg:
		t, ok := m.sync.ApplyTest(msg.Ticket, msg.Result)
		return m, m.refreshCmd(t, ok)

	case GenerationFinishedMsg:
		if m.sync.FinishGeneration(msg.Ticket, msg.Result) {
			st := m.sync.Snapshot()
			if st.GenerateError != "" {
				m.errorMsg = st.GenerateError
				m.output.SetContent("")
			} else {
				m.message = "Prompt generated"
				m.output.SetContent(st.Output)
				m.output.GotoTop()
			}
		}
		return m, nil

	case ConfigSavedMsg:
		if msg.Err != nil {
			m.errorMsg = backend.UserMessage(msg.Err)
			return m, nil
		}
		m.message = msg.Message
		req := msg.Request
		m.pendingAdopt = &req
		load := m.reloadConfigs()
		return m, load

	case ConfigDeletedMsg:
		m.viewState = ViewConfigPicker
		if msg.Err != nil {
			m.errorMsg = backend.UserMessage(msg.Err)
			return m, nil
		}
		m.message = msg.Message
		t, ok := m.sync.ConfigurationDeleted(msg.ID)
		m.clampCursor(len(m.sync.Snapshot().Configs) + 1)
		load := m.reloadConfigs()
		return m, tea.Batch(m.refreshCmd(t, ok), load)

	case SettingsReloadedMsg:
		if msg.Err != nil {
			m.errorMsg = "Failed to reload settings: " + msg.Err.Error()
			return m, waitForReload(m.reloads)
		}
		m.backend = msg.Backend
		m.runner = msg.Runner
		if msg.RequestTimeout > 0 {
			m.timeout = msg.RequestTimeout
		}
		m.message = "Settings reloaded"
		m.logger.Info().Msg("settings reloaded")

		cmds := []tea.Cmd{waitForReload(m.reloads), m.reloadConfigs()}
		st := m.sync.Snapshot()
		if !providers.RequiresCredential(st.Provider) || st.EffectiveCredential() != "" {
			cmds = append(cmds, m.fetchModels(m.sync.RefreshAvailableModels(st.Provider, st.Credential)))
		}
		return m, tea.Batch(cmds...)

	case PromptsLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = "Failed to load prompts: " + backend.UserMessage(msg.Err)
			return m, nil
		}
		m.prompts = msg.Prompts
		m.clampCursor(len(m.prompts))
		return m, nil

	case PromptSavedMsg:
		if msg.Err != nil {
			m.errorMsg = backend.UserMessage(msg.Err)
			return m, nil
		}
		m.message = msg.Message
		return m, nil

	case PromptDeletedMsg:
		m.viewState = ViewPrompts
		if msg.Err != nil {
			m.errorMsg = backend.UserMessage(msg.Err)
			return m, nil
		}
		m.message = msg.Message
		return m, loadPrompts(m.backend, m.timeout)
	}

	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewMain:
		return m.handleMainViewKeys(msg)
	case ViewForm:
		return m.handleFormViewKeys(msg)
	case ViewConfigPicker:
		return m.handleConfigPickerKeys(msg)
	case ViewModelPicker:
		return m.handleModelPickerKeys(msg)
	case ViewCredential:
		return m.handleCredentialKeys(msg)
	case ViewPrompts:
		return m.handlePromptsKeys(msg)
	case ViewDelete:
		return m.handleDeleteViewKeys(msg)
	case ViewHelp:
		return m.handleHelpViewKeys(msg)
	default:
		return m, nil
	}
}

// handleMainViewKeys handles keyboard input in main view
func (m Model) handleMainViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.errorMsg = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "e":
		m.formInputs = FormInputs(m.form)
		m.formFocus = FormFieldRole
		m.viewState = ViewForm
		return m, nil

	case "g":
		ticket, err := m.sync.PrepareGeneration(m.form)
		if err != nil {
			m.errorMsg = backend.UserMessage(err)
			return m, nil
		}
		m.output.SetContent("")
		m.logger.Info().Str("model", ticket.Request.Model).Str("provider", string(ticket.Request.Provider)).Msg("generating prompt")
		return m, m.generate(ticket)

	case "c":
		m.viewState = ViewConfigPicker
		m.cursor = m.configCursor()
		load := m.reloadConfigs()
		return m, load

	case "p":
		st := m.sync.Snapshot()
		t, ok, err := m.sync.SetProvider(providers.Next(st.Provider))
		if err != nil {
			m.errorMsg = m.editError(err)
			return m, nil
		}
		return m, m.refreshCmd(t, ok)

	case "a":
		if m.sync.Snapshot().Selected {
			m.errorMsg = m.editError(configsync.ErrConfigurationLocked)
			return m, nil
		}
		m.credentialInput = credentialInput(m.sync.Snapshot().Credential)
		m.viewState = ViewCredential
		return m, textinput.Blink

	case "m":
		st := m.sync.Snapshot()
		switch {
		case st.Selected:
			m.errorMsg = m.editError(configsync.ErrConfigurationLocked)
		case st.LoadingModels:
			m.errorMsg = m.editError(configsync.ErrModelsLoading)
		case len(st.AvailableModels) == 0:
			m.errorMsg = "No models available for " + providers.DisplayName(st.Provider)
		default:
			m.modelCursor = 0
			for i, name := range st.AvailableModels {
				if name == st.Model {
					m.modelCursor = i
				}
			}
			m.viewState = ViewModelPicker
		}
		return m, nil

	case "r":
		st := m.sync.Snapshot()
		return m, m.fetchModels(m.sync.RefreshAvailableModels(st.Provider, st.Credential))

	case "t":
		ticket, err := m.sync.TestConnection()
		if err != nil {
			return m, nil // recorded as the last test result
		}
		return m, m.testConnection(ticket)

	case "S":
		req, err := m.sync.PrepareSave()
		if err != nil {
			m.errorMsg = backend.UserMessage(err)
			return m, nil
		}
		return m, saveConfig(m.backend, m.timeout, req)

	case "s":
		st := m.sync.Snapshot()
		if st.Output == "" {
			m.errorMsg = "Nothing to save yet, generate a prompt first"
			return m, nil
		}
		return m, savePrompt(m.backend, m.timeout, st.Output)

	case "l":
		m.viewState = ViewPrompts
		m.cursor = 0
		return m, loadPrompts(m.backend, m.timeout)

	case "?":
		m.viewState = ViewHelp
		return m, nil
	}

	// Anything else scrolls the output
	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	return m, cmd
}

// handleFormViewKeys handles keyboard input in the prompt form
func (m Model) handleFormViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewMain
		m.errorMsg = ""
		m.formInputs = nil
		return m, nil

	case "tab", "down":
		m.formFocus = NextFormField(m.formInputs, m.formFocus)
		return m, nil

	case "shift+tab", "up":
		m.formFocus = PrevFormField(m.formInputs, m.formFocus)
		return m, nil

	case "enter":
		form := GetFormData(m.formInputs)
		if err := form.Validate(); err != nil {
			m.errorMsg = backend.UserMessage(err)
			return m, nil
		}
		m.form = form
		m.formInputs = nil
		m.errorMsg = ""
		m.message = "Prompt parameters updated"
		m.viewState = ViewMain
		return m, nil
	}

	if IsChoiceField(m.formFocus) {
		switch msg.String() {
		case " ", "right", "left", "l", "h":
			CycleChoice(m.formInputs, m.formFocus)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// handleConfigPickerKeys handles the configuration picker. Row 0 is manual entry.
func (m Model) handleConfigPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sync.Snapshot()
	rows := len(st.Configs) + 1

	switch msg.String() {
	case "esc", "q":
		m.viewState = ViewMain
		return m, nil

	case "j", "down":
		if m.cursor < rows-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "enter":
		m.viewState = ViewMain
		if m.cursor == 0 {
			m.message = "Manual entry"
			return m, m.fetchModels(m.sync.SwitchToManualConfiguration())
		}
		if m.cursor > len(st.Configs) {
			return m, nil
		}
		cfg := st.Configs[m.cursor-1]
		t, ok := m.sync.SelectSavedConfiguration(cfg.ID)
		if ok {
			m.message = "Using " + cfg.Label()
		}
		return m, m.refreshCmd(t, ok)

	case "d":
		if m.cursor == 0 || m.cursor > len(st.Configs) {
			return m, nil
		}
		cfg := st.Configs[m.cursor-1]
		m.pendingDel = deleteTarget{id: cfg.ID, label: cfg.Label(), from: ViewConfigPicker}
		m.viewState = ViewDelete
		return m, nil

	case "r":
		load := m.reloadConfigs()
		return m, load
	}
	return m, nil
}

// handleModelPickerKeys handles the model picker
func (m Model) handleModelPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sync.Snapshot()

	switch msg.String() {
	case "esc", "q":
		m.viewState = ViewMain
		return m, nil

	case "j", "down":
		if m.modelCursor < len(st.AvailableModels)-1 {
			m.modelCursor++
		}
		return m, nil

	case "k", "up":
		if m.modelCursor > 0 {
			m.modelCursor--
		}
		return m, nil

	case "enter":
		m.viewState = ViewMain
		if m.modelCursor >= len(st.AvailableModels) {
			return m, nil
		}
		if err := m.sync.SelectModel(st.AvailableModels[m.modelCursor]); err != nil {
			m.errorMsg = m.editError(err)
			return m, nil
		}
		m.message = "Model: " + st.AvailableModels[m.modelCursor]
		return m, nil
	}
	return m, nil
}

// handleCredentialKeys handles API key entry
func (m Model) handleCredentialKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewMain
		return m, nil

	case "enter":
		m.viewState = ViewMain
		t, ok, err := m.sync.SetCredential(m.credentialInput.Value())
		if err != nil {
			m.errorMsg = m.editError(err)
			return m, nil
		}
		m.message = "API key updated"
		return m, m.refreshCmd(t, ok)
	}

	var cmd tea.Cmd
	m.credentialInput, cmd = m.credentialInput.Update(msg)
	return m, cmd
}

// handlePromptsKeys handles the saved prompt list
func (m Model) handlePromptsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.viewState = ViewMain
		return m, nil

	case "j", "down":
		if m.cursor < len(m.prompts)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "enter":
		if m.cursor < len(m.prompts) {
			m.output.SetContent(m.prompts[m.cursor].Text)
			m.output.GotoTop()
			m.viewState = ViewMain
		}
		return m, nil

	case "d":
		if m.cursor < len(m.prompts) {
			p := m.prompts[m.cursor]
			m.pendingDel = deleteTarget{prompt: true, id: p.ID, label: firstLine(p.Text), from: ViewPrompts}
			m.viewState = ViewDelete
		}
		return m, nil

	case "r":
		return m, loadPrompts(m.backend, m.timeout)
	}
	return m, nil
}

// handleDeleteViewKeys handles keyboard input in delete confirmation view
func (m Model) handleDeleteViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := m.pendingDel
		m.pendingDel = deleteTarget{}
		if target.prompt {
			return m, deletePrompt(m.backend, m.timeout, target.id)
		}
		return m, deleteConfig(m.backend, m.timeout, target.id)

	case "n", "N", "esc":
		m.viewState = m.pendingDel.from
		m.pendingDel = deleteTarget{}
		m.message = ""
		m.errorMsg = ""
		return m, nil
	}
	return m, nil
}

// handleHelpViewKeys handles keyboard input in help view
func (m Model) handleHelpViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.viewState = ViewMain
	}
	return m, nil
}

// editError turns a synchronizer rejection into status text
func (m Model) editError(err error) string {
	switch {
	case errors.Is(err, configsync.ErrConfigurationLocked):
		return "A saved configuration is in use; press c and pick manual entry to edit"
	case errors.Is(err, configsync.ErrModelsLoading):
		return "Models are still loading"
	}
	return backend.UserMessage(err)
}

// configCursor returns the picker row of the current selection
func (m Model) configCursor() int {
	st := m.sync.Snapshot()
	if !st.Selected {
		return 0
	}
	for i, cfg := range st.Configs {
		if cfg.ID == st.SelectedID {
			return i + 1
		}
	}
	return 0
}

func (m *Model) clampCursor(rows int) {
	if m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// refreshCmd runs t when ok
func (m Model) refreshCmd(t configsync.RefreshTicket, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	return m.fetchModels(t)
}

// fetchModels creates a command that runs a model refresh
func (m Model) fetchModels(t configsync.RefreshTicket) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		return ModelsLoadedMsg{Ticket: t, Result: runner.FetchModels(context.Background(), t)}
	}
}

// testConnection creates a command that runs a connection test
func (m Model) testConnection(t configsync.TestTicket) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		return TestFinishedMsg{Ticket: t, Result: runner.Test(context.Background(), t)}
	}
}

// generate creates a command that runs a generation under the runner's timeout
func (m Model) generate(t configsync.GenerationTicket) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		return GenerationFinishedMsg{Ticket: t, Result: runner.Generate(context.Background(), t)}
	}
}

// waitForReload waits for the next rebuilt backend
func waitForReload(ch <-chan SettingsReloadedMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// reloadConfigs starts a configuration list load that supersedes any in flight
func (m *Model) reloadConfigs() tea.Cmd {
	m.configsGen++
	return loadConfigs(m.backend, m.timeout, m.configsGen)
}

// loadConfigs creates a command to load the saved configurations
func loadConfigs(b Backend, timeout time.Duration, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		configs, err := b.ListConfigs(ctx)
		return ConfigsLoadedMsg{Generation: gen, Configs: configs, Err: err}
	}
}

// saveConfig creates a command to save a configuration
func saveConfig(b Backend, timeout time.Duration, req backend.SaveConfigRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		message, err := b.SaveConfig(ctx, req)
		return ConfigSavedMsg{Request: req, Message: message, Err: err}
	}
}

// deleteConfig creates a command to delete a configuration
func deleteConfig(b Backend, timeout time.Duration, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		message, err := b.DeleteConfig(ctx, id)
		return ConfigDeletedMsg{ID: id, Message: message, Err: err}
	}
}

// loadPrompts creates a command to load the saved prompts
func loadPrompts(b Backend, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		prompts, err := b.ListPrompts(ctx)
		return PromptsLoadedMsg{Prompts: prompts, Err: err}
	}
}

// savePrompt creates a command to save a generated prompt
func savePrompt(b Backend, timeout time.Duration, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		message, err := b.SavePrompt(ctx, text)
		return PromptSavedMsg{Message: message, Err: err}
	}
}

// deletePrompt creates a command to delete a saved prompt
func deletePrompt(b Backend, timeout time.Duration, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		message, err := b.DeletePrompt(ctx, id)
		return PromptDeletedMsg{ID: id, Message: message, Err: err}
	}
}

// credentialInput creates the masked API key input
func credentialInput(current string) textinput.Model {
	in := textinput.New()
	in.Placeholder = "sk-..."
	in.CharLimit = 256
	in.Width = 50
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Prompt = ""
	in.SetValue(current)
	in.Focus()
	return in
}

// View renders the UI
func (m Model) View() string {
	switch m.viewState {
	case ViewForm:
		return RenderForm(m.formInputs, m.formFocus, "Prompt parameters", m.errorMsg)
	case ViewConfigPicker:
		return m.RenderConfigPicker()
	case ViewModelPicker:
		return m.RenderModelPicker()
	case ViewCredential:
		return m.RenderCredentialView()
	case ViewPrompts:
		return m.RenderPromptsView()
	case ViewDelete:
		return m.RenderDeleteConfirm()
	case ViewHelp:
		return m.RenderHelpView()
	default:
		return m.RenderMainView()
	}
}

func firstLine(s string) string {
	return fmt.Sprintf("%q", utils.Truncate(utils.FirstLine(s), 50))
}
