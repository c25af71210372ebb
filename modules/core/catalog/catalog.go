package catalog

// Provider is one LLM provider with its selectable models. Models are
// ordered; the first entry is the provider's default.
type Provider struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// Providers returns the selectable providers in display order
func Providers() []Provider {
	return []Provider{
		{
			ID:   "openai",
			Name: "OpenAI",
			Models: []string{
				"gpt-4o-latest",
				"gpt-4.5-preview",
			},
		},
		{
			ID:   "anthropic",
			Name: "Anthropic",
			Models: []string{
				"claude-3-5-sonnet-20241022",
				"claude-3-7-sonnet-20250219",
			},
		},
		{
			ID:   "bedrock",
			Name: "Amazon Bedrock",
			Models: []string{
				"anthropic.claude-3-7-sonnet-20250219-v1:0",
			},
		},
	}
}

// FindProvider looks up a provider by ID
func FindProvider(id string) (Provider, bool) {
	for _, p := range Providers() {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// DefaultModel returns the first model of the given provider, or empty
// if the provider is unknown
func DefaultModel(providerID string) string {
	p, ok := FindProvider(providerID)
	if !ok || len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}
