package configsync

import (
	"reflect"
	"sort"
	"testing"

	"promptforge/internal/backend"
	"promptforge/internal/providers"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// step applies one externally triggered operation, encoded as an int
func step(s *Synchronizer, op int) {
	id := int64(op/8) + 1 // ids 1..4, 4 is never cached
	switch op % 8 {
	case 0, 1:
		s.SelectSavedConfiguration(id)
	case 2:
		s.SwitchToManualConfiguration()
	case 3:
		s.ConfigurationDeleted(id)
	case 4:
		s.ApplyConfigurations(propertyConfigs[:id-1])
	case 5:
		s.SetProvider(providers.Next(s.state.Provider))
	case 6:
		s.SetCredential("sk-" + string(rune('a'+id)))
	case 7:
		t := s.RefreshAvailableModels(s.state.Provider, s.state.Credential)
		s.ApplyModels(t, ModelsResult{Models: []string{"m1", "m2"}})
	}
}

var propertyConfigs = []backend.SavedConfig{
	{ID: 1, Provider: providers.Ollama, Model: "m1"},
	{ID: 2, Provider: providers.OpenAI, Model: "m2", Credential: "sk-b"},
	{ID: 3, Provider: providers.OpenAI, Model: "m3", Credential: "sk-c"},
}

// **Feature: configuration-sync, Property 1: Selection exclusivity**
//
// *For any* sequence of select, manual, delete and reload operations, exactly
// one of "a saved configuration is selected" and "manual entry" holds after
// every operation.
func TestProperty1_SelectionExclusivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	opsGen := gen.SliceOf(gen.IntRange(0, 31))

	properties.Property("selected xor manual after every operation", prop.ForAll(
		func(ops []int) bool {
			s := New()
			s.ApplyConfigurations(propertyConfigs)
			if !s.state.Consistent() {
				return false
			}
			for _, op := range ops {
				step(s, op)
				st := s.Snapshot()
				if !st.Consistent() {
					return false
				}
				// a selection always points at a cached configuration
				if st.Selected {
					if _, ok := st.SelectedConfig(); !ok {
						return false
					}
				}
			}
			return true
		},
		opsGen,
	))

	properties.TestingRun(t)
}

// **Feature: configuration-sync, Property 2: Later trigger wins**
//
// *For any* number of refreshes triggered in order and completed in any
// order, the final model list is the one produced by the last trigger.
func TestProperty2_LaterTriggerWins(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// completion keys: the refresh with the smallest key completes first
	keysGen := gen.SliceOf(gen.IntRange(0, 1000)).SuchThat(func(keys []int) bool {
		return len(keys) > 0
	})

	properties.Property("last-triggered result is final", prop.ForAll(
		func(keys []int) bool {
			s := New()
			tickets := make([]RefreshTicket, len(keys))
			for i := range keys {
				tickets[i] = s.RefreshAvailableModels(providers.Ollama, "")
			}

			order := make([]int, len(keys))
			for i := range order {
				order[i] = i
			}
			sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

			for _, i := range order {
				applied := s.ApplyModels(tickets[i], ModelsResult{Models: []string{modelName(i)}})
				if applied != (i == len(keys)-1) {
					return false
				}
			}

			st := s.Snapshot()
			return !st.LoadingModels && reflect.DeepEqual(st.AvailableModels, []string{modelName(len(keys) - 1)})
		},
		keysGen,
	))

	properties.TestingRun(t)
}

// **Feature: configuration-sync, Property 3: Wholesale replacement**
//
// *For any* previous list, held model and fresh list, the available models
// equal the fresh list and the held model survives only if it is in it.
func TestProperty3_WholesaleReplacement(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	namesGen := gen.SliceOf(gen.OneConstOf("llama3", "mistral", "gpt-4o", "gpt-x", "phi3"), reflect.TypeOf(""))
	heldGen := gen.OneConstOf("", "llama3", "gpt-x", "phi3")

	properties.Property("fresh list replaces the old one", prop.ForAll(
		func(previous, fresh []string, held string) bool {
			s := New()
			first := s.RefreshAvailableModels(providers.Ollama, "")
			s.ApplyModels(first, ModelsResult{Models: previous})
			s.state.Model = held

			next := s.RefreshAvailableModels(providers.Ollama, "")
			s.ApplyModels(next, ModelsResult{Models: fresh})

			st := s.Snapshot()
			if !reflect.DeepEqual(st.AvailableModels, append([]string{}, fresh...)) {
				return false
			}
			if held != "" && st.HasModel(held) {
				return st.Model == held
			}
			return st.Model == ""
		},
		namesGen,
		namesGen,
		heldGen,
	))

	properties.TestingRun(t)
}

func modelName(i int) string {
	return "model-" + string(rune('a'+i%26)) + string(rune('a'+i/26%26))
}
