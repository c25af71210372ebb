package catalog

import "sync"

// ChangeFunc is notified whenever the user commits a new provider/model
// pair. It is not called for the initial defaults.
type ChangeFunc func(providerID, modelID string)

// Selection tracks the current provider/model choice. Switching
// providers always resets the model to that provider's first entry.
type Selection struct {
	mu          sync.Mutex
	providers   []Provider
	providerIdx int
	modelIdx    int
	onChange    ChangeFunc
}

// NewSelection creates a selection seeded from the configured defaults.
// Unknown providers fall back to the first provider, unknown models to
// the provider's first model.
func NewSelection(defaultProvider, defaultModel string, onChange ChangeFunc) *Selection {
	s := &Selection{
		providers: Providers(),
		onChange:  onChange,
	}

	for i, p := range s.providers {
		if p.ID == defaultProvider {
			s.providerIdx = i
			break
		}
	}

	for i, m := range s.providers[s.providerIdx].Models {
		if m == defaultModel {
			s.modelIdx = i
			break
		}
	}

	return s
}

// Providers returns the full provider list
func (s *Selection) Providers() []Provider {
	return s.providers
}

// Provider returns the currently selected provider
func (s *Selection) Provider() Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providers[s.providerIdx]
}

// Model returns the currently selected model ID
func (s *Selection) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelLocked()
}

func (s *Selection) modelLocked() string {
	models := s.providers[s.providerIdx].Models
	if len(models) == 0 {
		return ""
	}
	return models[s.modelIdx]
}

// Selected returns the current provider/model pair
func (s *Selection) Selected() (providerID, modelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providers[s.providerIdx].ID, s.modelLocked()
}

// Indexes returns the cursor positions for rendering
func (s *Selection) Indexes() (provider, model int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerIdx, s.modelIdx
}

// SetProvider switches to the named provider and resets the model to
// its first entry. No-op for unknown IDs or when already selected.
func (s *Selection) SetProvider(id string) {
	s.mu.Lock()
	for i, p := range s.providers {
		if p.ID != id {
			continue
		}
		if i == s.providerIdx {
			s.mu.Unlock()
			return
		}
		s.providerIdx = i
		s.modelIdx = 0
		s.notifyLocked()
		return
	}
	s.mu.Unlock()
}

// SetModel selects a model within the current provider. No-op for
// unknown models or when already selected.
func (s *Selection) SetModel(id string) {
	s.mu.Lock()
	for i, m := range s.providers[s.providerIdx].Models {
		if m != id {
			continue
		}
		if i == s.modelIdx {
			s.mu.Unlock()
			return
		}
		s.modelIdx = i
		s.notifyLocked()
		return
	}
	s.mu.Unlock()
}

// CycleProvider moves the provider cursor by delta, wrapping around,
// and resets the model to the new provider's first entry
func (s *Selection) CycleProvider(delta int) {
	s.mu.Lock()
	n := len(s.providers)
	s.providerIdx = ((s.providerIdx+delta)%n + n) % n
	s.modelIdx = 0
	s.notifyLocked()
}

// CycleModel moves the model cursor by delta within the current
// provider, wrapping around
func (s *Selection) CycleModel(delta int) {
	s.mu.Lock()
	n := len(s.providers[s.providerIdx].Models)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	s.modelIdx = ((s.modelIdx+delta)%n + n) % n
	s.notifyLocked()
}

// notifyLocked fires the change callback outside the lock
func (s *Selection) notifyLocked() {
	provider := s.providers[s.providerIdx].ID
	model := s.modelLocked()
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(provider, model)
	}
}
