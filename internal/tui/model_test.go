package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
	"promptforge/internal/providers"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeBackend is an in-memory backend
type fakeBackend struct {
	mu       sync.Mutex
	configs  []backend.SavedConfig
	prompts  []backend.SavedPrompt
	nextID   int64
	testMsg  string
	output   string
	calls    map[string]int
	lastReq  backend.GenerateRequest
	deleteID int64
}

func newFakeBackend(configs ...backend.SavedConfig) *fakeBackend {
	return &fakeBackend{
		configs: configs,
		prompts: []backend.SavedPrompt{{ID: 1, Text: "You are a tutor.\nExplain gently."}, {ID: 2, Text: "You are a critic."}},
		nextID:  11,
		testMsg: "Connection successful",
		output:  "You are a patient teacher...",
		calls:   map[string]int{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListModels(ctx context.Context, provider providers.Choice, credential string) (backend.ModelList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListModels"]++
	if providers.RequiresCredential(provider) && credential == "" {
		return backend.ModelList{}, &backend.Error{Kind: backend.KindBackend, Message: "Invalid or missing API key"}
	}
	if provider == providers.OpenAI {
		return backend.ModelList{Models: []string{"gpt-4o", "gpt-x"}, Status: backend.StatusSuccess}, nil
	}
	return backend.ModelList{Models: []string{"llama3", "mistral"}, Status: backend.StatusSuccess}, nil
}

func (f *fakeBackend) TestConnection(ctx context.Context, provider providers.Choice, credential string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["TestConnection"]++
	return f.testMsg, nil
}

func (f *fakeBackend) Generate(ctx context.Context, req backend.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Generate"]++
	f.lastReq = req
	return f.output, nil
}

func (f *fakeBackend) ListConfigs(ctx context.Context) ([]backend.SavedConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.SavedConfig{}, f.configs...), nil
}

func (f *fakeBackend) SaveConfig(ctx context.Context, req backend.SaveConfigRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, backend.SavedConfig{ID: f.nextID, Provider: req.Provider, Model: req.Model, Credential: req.Credential})
	f.nextID++
	return "AI config saved", nil
}

func (f *fakeBackend) DeleteConfig(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteID = id
	kept := f.configs[:0]
	for _, c := range f.configs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.configs = kept
	return "AI config deleted successfully", nil
}

func (f *fakeBackend) ListPrompts(ctx context.Context) ([]backend.SavedPrompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.SavedPrompt{}, f.prompts...), nil
}

func (f *fakeBackend) SavePrompt(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, backend.SavedPrompt{ID: int64(len(f.prompts) + 1), Text: prompt})
	return "Prompt saved successfully", nil
}

func (f *fakeBackend) DeletePrompt(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteID = id
	kept := f.prompts[:0]
	for _, p := range f.prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.prompts = kept
	return "Prompt deleted successfully", nil
}

var openAIConfig = backend.SavedConfig{ID: 7, Provider: providers.OpenAI, Model: "gpt-x", Credential: "sk-abcdef123456"}

// drive runs cmd and feeds every resulting message back into the model until
// nothing is left. Spinner ticks and timers such as cursor blinks are dropped.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("drive: too many steps")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		var result tea.Msg
		select {
		case result = <-done:
		case <-time.After(200 * time.Millisecond):
			continue
		}
		switch msg := result.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs whatever it triggers
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyPress(k))
		m = drive(t, next.(Model), cmd)
	}
	return m
}

func startModel(t *testing.T, fb *fakeBackend) Model {
	t.Helper()
	m := NewModel(Options{Backend: fb})
	return drive(t, m, m.Init())
}

func TestInitSeedsFirstConfiguration(t *testing.T) {
	fb := newFakeBackend(openAIConfig)
	m := startModel(t, fb)

	st := m.Snapshot()
	if !st.Selected || st.SelectedID != 7 {
		t.Fatalf("Init() selected = %v (id %d), want config 7", st.Selected, st.SelectedID)
	}
	if st.Provider != providers.OpenAI || st.Model != "gpt-x" {
		t.Errorf("Init() provider/model = %s/%s, want openai/gpt-x", st.Provider, st.Model)
	}
	if got := strings.Join(st.AvailableModels, ","); got != "gpt-4o,gpt-x" {
		t.Errorf("Init() models = %s, want the OpenAI list", got)
	}
	if !st.Consistent() {
		t.Error("Init() left an inconsistent state")
	}
}

func TestInitWithoutConfigurations(t *testing.T) {
	m := startModel(t, newFakeBackend())

	st := m.Snapshot()
	if st.Mode() != configsync.ModeNoConfig {
		t.Errorf("Mode() = %v, want %v", st.Mode(), configsync.ModeNoConfig)
	}
	if got := strings.Join(st.AvailableModels, ","); got != "llama3,mistral" {
		t.Errorf("models = %s, want the Ollama list", got)
	}
}

func TestConfigPickerSwitchToManual(t *testing.T) {
	m := startModel(t, newFakeBackend(openAIConfig))

	m = press(t, m, "c")
	if m.viewState != ViewConfigPicker {
		t.Fatalf("viewState = %v, want ViewConfigPicker", m.viewState)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want the selected config row", m.cursor)
	}

	m = press(t, m, "k", "enter")

	st := m.Snapshot()
	if st.Selected || !st.Manual {
		t.Fatal("manual entry should clear the selection")
	}
	if st.Credential != "" || st.Model != "" {
		t.Errorf("manual entry kept credential %q / model %q", st.Credential, st.Model)
	}
	// OpenAI without a key cannot list models
	if len(st.AvailableModels) != 0 || st.ModelsPhase() != configsync.ModelsFailed {
		t.Errorf("models = %v phase %v, want empty and failed", st.AvailableModels, st.ModelsPhase())
	}
}

func TestConfigPickerSelect(t *testing.T) {
	ollama := backend.SavedConfig{ID: 9, Provider: providers.Ollama, Model: "mistral"}
	m := startModel(t, newFakeBackend(openAIConfig, ollama))

	m = press(t, m, "c", "j", "enter")

	st := m.Snapshot()
	if st.SelectedID != 9 || st.Provider != providers.Ollama || st.Model != "mistral" {
		t.Errorf("selected %d %s/%s, want config 9", st.SelectedID, st.Provider, st.Model)
	}
	if m.viewState != ViewMain {
		t.Errorf("viewState = %v, want ViewMain", m.viewState)
	}
}

func TestEditsLockedWhileConfigSelected(t *testing.T) {
	m := startModel(t, newFakeBackend(openAIConfig))

	for _, k := range []string{"p", "a", "m"} {
		t.Run(k, func(t *testing.T) {
			next := press(t, m, k)
			if !strings.Contains(next.errorMsg, "saved configuration is in use") {
				t.Errorf("errorMsg = %q, want the lock notice", next.errorMsg)
			}
			if next.viewState != ViewMain {
				t.Errorf("viewState = %v, want ViewMain", next.viewState)
			}
			if next.Snapshot().Provider != providers.OpenAI {
				t.Error("provider changed while locked")
			}
		})
	}
}

func TestManualProviderAndCredential(t *testing.T) {
	fb := newFakeBackend()
	m := startModel(t, fb)

	m = press(t, m, "p")
	st := m.Snapshot()
	if st.Provider != providers.OpenAI {
		t.Fatalf("provider = %s, want openai", st.Provider)
	}
	if len(st.AvailableModels) != 0 {
		t.Errorf("models = %v, want none without an API key", st.AvailableModels)
	}

	m = press(t, m, "a")
	if m.viewState != ViewCredential {
		t.Fatalf("viewState = %v, want ViewCredential", m.viewState)
	}
	m = press(t, m, "sk-new-key-1234", "enter")

	st = m.Snapshot()
	if st.Credential != "sk-new-key-1234" {
		t.Errorf("credential = %q", st.Credential)
	}
	if got := strings.Join(st.AvailableModels, ","); got != "gpt-4o,gpt-x" {
		t.Errorf("models = %s, want the OpenAI list", got)
	}
	if !strings.Contains(m.View(), "sk-n****1234") {
		t.Error("View() should show the masked API key")
	}
}

func TestModelPicker(t *testing.T) {
	m := startModel(t, newFakeBackend())

	m = press(t, m, "m")
	if m.viewState != ViewModelPicker {
		t.Fatalf("viewState = %v, want ViewModelPicker", m.viewState)
	}
	m = press(t, m, "j", "enter")

	if got := m.Snapshot().Model; got != "mistral" {
		t.Errorf("model = %q, want mistral", got)
	}
	if m.message != "Model: mistral" {
		t.Errorf("message = %q", m.message)
	}
}

func TestFormEditing(t *testing.T) {
	base := startModel(t, newFakeBackend())

	t.Run("opens form", func(t *testing.T) {
		m := press(t, base, "e")
		if m.viewState != ViewForm {
			t.Fatalf("viewState = %v, want ViewForm", m.viewState)
		}
	})

	t.Run("enter with empty role stays in form", func(t *testing.T) {
		m := press(t, base, "e", "enter")
		if m.viewState != ViewForm {
			t.Errorf("viewState = %v, want ViewForm", m.viewState)
		}
		if !strings.Contains(m.errorMsg, "role is required") {
			t.Errorf("errorMsg = %q", m.errorMsg)
		}
	})

	t.Run("esc discards", func(t *testing.T) {
		m := press(t, base, "e", "teacher", "esc")
		if m.viewState != ViewMain || m.form.Role != "" {
			t.Errorf("esc kept edits: view %v role %q", m.viewState, m.form.Role)
		}
		if m.formInputs != nil {
			t.Error("formInputs should be cleared")
		}
	})

	t.Run("enter applies", func(t *testing.T) {
		m := press(t, base, "e", "teacher", "tab", "explain recursion", "tab", " ", "enter")
		if m.viewState != ViewMain {
			t.Fatalf("viewState = %v, want ViewMain", m.viewState)
		}
		if m.form.Role != "teacher" || m.form.Task != "explain recursion" {
			t.Errorf("form = %+v", m.form)
		}
		if m.form.Example != "single example" {
			t.Errorf("Example = %q, want single example", m.form.Example)
		}
	})
}

func TestGenerate(t *testing.T) {
	fb := newFakeBackend()
	m := startModel(t, fb)
	m.form = configsync.DefaultForm()
	m.form.Role = "teacher"
	m.form.Task = "explain recursion"

	t.Run("without a model nothing is sent", func(t *testing.T) {
		next := press(t, m, "g")
		if next.errorMsg == "" {
			t.Error("expected an error message")
		}
		if fb.count("Generate") != 0 {
			t.Error("Generate should not be called")
		}
	})

	m = press(t, m, "m", "enter", "g")

	st := m.Snapshot()
	if st.Generating {
		t.Error("generation should have finished")
	}
	if st.Output != "You are a patient teacher..." {
		t.Errorf("output = %q", st.Output)
	}
	if m.message != "Prompt generated" {
		t.Errorf("message = %q", m.message)
	}
	if fb.lastReq.Model != "llama3" || fb.lastReq.Credential != "" {
		t.Errorf("request = %+v", fb.lastReq)
	}

	m = press(t, m, "s")
	if m.message != "Prompt saved successfully" {
		t.Errorf("save message = %q", m.message)
	}
}

func TestSavePromptWithoutOutput(t *testing.T) {
	m := startModel(t, newFakeBackend())

	m = press(t, m, "s")
	if !strings.Contains(m.errorMsg, "generate a prompt first") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestConnectionTest(t *testing.T) {
	t.Run("remote provider without key fails locally", func(t *testing.T) {
		fb := newFakeBackend()
		m := startModel(t, fb)
		m = press(t, m, "p", "t")

		st := m.Snapshot()
		if st.LastTest.Succeeded() || !strings.Contains(st.LastTest.Message, "requires an API key") {
			t.Errorf("LastTest = %+v", st.LastTest)
		}
		if fb.count("TestConnection") != 0 {
			t.Error("TestConnection should not be called")
		}
	})

	t.Run("success refreshes models", func(t *testing.T) {
		fb := newFakeBackend(openAIConfig)
		m := startModel(t, fb)
		before := fb.count("ListModels")

		m = press(t, m, "t")

		st := m.Snapshot()
		if !st.LastTest.Succeeded() || st.Testing {
			t.Errorf("LastTest = %+v testing %v", st.LastTest, st.Testing)
		}
		if fb.count("ListModels") != before+1 {
			t.Error("a passed test should refresh the model list")
		}
	})
}

func TestSaveConfigurationAdoptsIt(t *testing.T) {
	fb := newFakeBackend()
	m := startModel(t, fb)

	m = press(t, m, "p", "a", "sk-new-key-1234", "enter", "m", "enter", "S")

	st := m.Snapshot()
	if !st.Selected || st.SelectedID != 11 {
		t.Fatalf("selected = %v id %d, want the saved config 11", st.Selected, st.SelectedID)
	}
	if st.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", st.Model)
	}
	if m.message != "AI config saved" {
		t.Errorf("message = %q", m.message)
	}
}

func TestDeleteSelectedConfiguration(t *testing.T) {
	fb := newFakeBackend(openAIConfig)
	m := startModel(t, fb)

	m = press(t, m, "c", "d")
	if m.viewState != ViewDelete {
		t.Fatalf("viewState = %v, want ViewDelete", m.viewState)
	}
	if !strings.Contains(m.View(), "in use") {
		t.Error("delete dialog should warn about the configuration in use")
	}

	t.Run("cancel", func(t *testing.T) {
		next := press(t, m, "n")
		if next.viewState != ViewConfigPicker {
			t.Errorf("viewState = %v, want ViewConfigPicker", next.viewState)
		}
		if fb.deleteID != 0 {
			t.Error("nothing should be deleted")
		}
	})

	m = press(t, m, "y")

	if fb.deleteID != 7 {
		t.Errorf("deleted id = %d, want 7", fb.deleteID)
	}
	st := m.Snapshot()
	if st.Selected || st.Mode() != configsync.ModeNoConfig {
		t.Errorf("mode = %v, want %v", st.Mode(), configsync.ModeNoConfig)
	}
}

func TestDeleteLastPickerRow(t *testing.T) {
	ollama := backend.SavedConfig{ID: 8, Provider: providers.Ollama, Model: "llama3"}
	m := startModel(t, newFakeBackend(openAIConfig, ollama))

	m = press(t, m, "c", "j")
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}

	// The list reload is still in flight
	next, _ := m.Update(ConfigDeletedMsg{ID: 8, Message: "AI config deleted successfully"})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(keyPress("enter"))
	m = next.(Model)
	if st := m.Snapshot(); !st.Selected || st.SelectedID != 7 {
		t.Errorf("selected = %v/%d, want config 7", st.Selected, st.SelectedID)
	}

	t.Run("cursor past the list", func(t *testing.T) {
		m.viewState = ViewConfigPicker
		m.cursor = 5
		for _, k := range []string{"d", "enter"} {
			next, _ := m.Update(keyPress(k))
			if got := next.(Model); got.viewState == ViewDelete {
				t.Errorf("%q opened a delete dialog for a missing row", k)
			}
		}
	})
}

func TestStaleConfigListDiscarded(t *testing.T) {
	m := startModel(t, newFakeBackend(openAIConfig))
	m = press(t, m, "c")

	gone := backend.SavedConfig{ID: 3, Provider: providers.Ollama, Model: "mistral"}
	next, _ := m.Update(ConfigsLoadedMsg{Generation: m.configsGen - 1, Configs: []backend.SavedConfig{gone, openAIConfig}})
	m = next.(Model)
	if st := m.Snapshot(); len(st.Configs) != 1 {
		t.Errorf("configs = %+v, an older list must not replace the current one", st.Configs)
	}

	req := backend.SaveConfigRequest{Provider: providers.Ollama, Model: "llama3"}
	next, _ = m.Update(ConfigSavedMsg{Request: req, Message: "AI config saved"})
	m = next.(Model)
	next, _ = m.Update(ConfigsLoadedMsg{Generation: m.configsGen - 1, Configs: []backend.SavedConfig{openAIConfig}})
	m = next.(Model)
	if m.pendingAdopt == nil {
		t.Error("a list from before the save must not consume the pending adoption")
	}

	saved := backend.SavedConfig{ID: 11, Provider: providers.Ollama, Model: "llama3"}
	next, _ = m.Update(ConfigsLoadedMsg{Generation: m.configsGen, Configs: []backend.SavedConfig{openAIConfig, saved}})
	m = next.(Model)
	if st := m.Snapshot(); st.SelectedID != 11 || m.pendingAdopt != nil {
		t.Errorf("selected = %d pending = %v, want 11 adopted", st.SelectedID, m.pendingAdopt)
	}
}

func TestPrompts(t *testing.T) {
	fb := newFakeBackend()
	m := startModel(t, fb)

	m = press(t, m, "l")
	if m.viewState != ViewPrompts || len(m.prompts) != 2 {
		t.Fatalf("viewState = %v prompts = %d", m.viewState, len(m.prompts))
	}

	shown := press(t, m, "enter")
	if shown.viewState != ViewMain {
		t.Errorf("viewState = %v, want ViewMain", shown.viewState)
	}

	m = press(t, m, "j", "d", "y")
	if fb.deleteID != 2 {
		t.Errorf("deleted id = %d, want 2", fb.deleteID)
	}
	if m.viewState != ViewPrompts || len(m.prompts) != 1 {
		t.Errorf("after delete viewState = %v prompts = %d", m.viewState, len(m.prompts))
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestStaleModelListDiscarded(t *testing.T) {
	m := startModel(t, newFakeBackend(openAIConfig))

	stale := configsync.RefreshTicket{Generation: 1, Provider: providers.Ollama}
	next, _ := m.Update(ModelsLoadedMsg{Ticket: stale, Result: configsync.ModelsResult{Models: []string{"llama3"}}})

	if got := next.(Model).Snapshot().AvailableModels; strings.Join(got, ",") != "gpt-4o,gpt-x" {
		t.Errorf("stale result applied: %v", got)
	}
}

func TestHelpView(t *testing.T) {
	m := startModel(t, newFakeBackend())

	m = press(t, m, "?")
	if m.viewState != ViewHelp {
		t.Fatalf("viewState = %v, want ViewHelp", m.viewState)
	}
	if !strings.Contains(m.View(), "generate") {
		t.Error("help should list the generate key")
	}
	m = press(t, m, "esc")
	if m.viewState != ViewMain {
		t.Errorf("viewState = %v, want ViewMain", m.viewState)
	}
}

func TestWaitForReload(t *testing.T) {
	if waitForReload(nil) != nil {
		t.Error("no channel, no command")
	}

	reloads := make(chan SettingsReloadedMsg, 1)
	reloads <- SettingsReloadedMsg{RequestTimeout: time.Second}
	msg, ok := waitForReload(reloads)().(SettingsReloadedMsg)
	if !ok || msg.RequestTimeout != time.Second {
		t.Errorf("waitForReload() = %+v", msg)
	}
}

// TestWindowSizeMsg tests the WindowSizeMsg handling in Update
func TestWindowSizeMsg(t *testing.T) {
	tests := []struct {
		name      string
		newWidth  int
		newHeight int
	}{
		{"resize to larger", 120, 40},
		{"resize to smaller", 60, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(Options{Backend: newFakeBackend()})

			newModel, _ := m.Update(tea.WindowSizeMsg{Width: tt.newWidth, Height: tt.newHeight})
			updated := newModel.(Model)

			if updated.width != tt.newWidth || updated.height != tt.newHeight {
				t.Errorf("size = %dx%d, want %dx%d", updated.width, updated.height, tt.newWidth, tt.newHeight)
			}
			if updated.output.Height != updated.outputHeight() {
				t.Errorf("output height = %d, want %d", updated.output.Height, updated.outputHeight())
			}
		})
	}
}

// TestGetEffectiveWidth tests the getEffectiveWidth method
func TestGetEffectiveWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{0, 60},
		{50, 48},
		{200, 100},
	}

	for _, tt := range tests {
		m := Model{width: tt.width}
		if got := m.getEffectiveWidth(60); got != tt.want {
			t.Errorf("getEffectiveWidth() with width %d = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestSettingsReloadSwapsBackend(t *testing.T) {
	m := startModel(t, newFakeBackend())

	other := newFakeBackend(openAIConfig)
	next, cmd := m.Update(SettingsReloadedMsg{Backend: other, Runner: configsync.NewRunner(other)})
	m = drive(t, next.(Model), cmd)

	if m.message != "Settings reloaded" {
		t.Errorf("message = %q", m.message)
	}
	if st := m.Snapshot(); len(st.Configs) != 1 || st.Configs[0].ID != 7 {
		t.Errorf("configs = %+v, want the new backend's list", st.Configs)
	}
	if other.count("ListModels") == 0 {
		t.Error("the model list should be refreshed against the new backend")
	}
}
